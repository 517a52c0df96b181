package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TuSKan/ngff-pixelbuffer/pixelbuffer"
)

var (
	maxPlaneWidth  int
	maxPlaneHeight int
	declaredSizeX  int
	declaredSizeY  int

	rootCmd = &cobra.Command{
		Use:   "ngffinfo <root-uri>",
		Short: "inspect an OME-NGFF Zarr multiscale pyramid",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			pb, err := openBuffer(context.Background(), args[0])
			if err != nil {
				log.Fatalln("failed to open pixel buffer:", err)
			}
			defer pb.Close()
			printInfo(pb)
		},
	}

	tileCmd = &cobra.Command{
		Use:   "tile <root-uri> <z> <c> <t> <x> <y> <w> <h>",
		Short: "read one tile and print its byte length",
		Args:  cobra.ExactArgs(8),
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			pb, err := openBuffer(ctx, args[0])
			if err != nil {
				log.Fatalln("failed to open pixel buffer:", err)
			}
			defer pb.Close()

			z, c, t, x, y, w, h := parseCoords(args[1:])
			tile, err := pb.GetTile(ctx, z, c, t, x, y, w, h)
			if err != nil {
				log.Fatalln("failed to read tile:", err)
			}
			fmt.Printf("read %d bytes\n", len(tile))
		},
	}
)

func init() {
	rootCmd.PersistentFlags().IntVar(&maxPlaneWidth, "max-plane-width", 1<<16, "largest width a single read may request")
	rootCmd.PersistentFlags().IntVar(&maxPlaneHeight, "max-plane-height", 1<<16, "largest height a single read may request")
	rootCmd.PersistentFlags().IntVar(&declaredSizeX, "size-x", 0, "full-resolution width, for the synthetic pyramid table")
	rootCmd.PersistentFlags().IntVar(&declaredSizeY, "size-y", 0, "full-resolution height, for the synthetic pyramid table")
	rootCmd.AddCommand(tileCmd)
}

func openBuffer(ctx context.Context, rootURI string) (*pixelbuffer.PixelBuffer, error) {
	metaCache, err := pixelbuffer.NewMetadataCache(64)
	if err != nil {
		return nil, err
	}
	arrayCache, err := pixelbuffer.NewArrayCache(64)
	if err != nil {
		return nil, err
	}
	pixels := pixelbuffer.Pixels{SizeX: declaredSizeX, SizeY: declaredSizeY}
	return pixelbuffer.New(ctx, pixels, rootURI, maxPlaneWidth, maxPlaneHeight, metaCache, arrayCache)
}

func parseCoords(args []string) (z, c, t, x, y, w, h int) {
	vals := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			log.Fatalf("invalid coordinate %q: %v", a, err)
		}
		vals[i] = n
	}
	return vals[0], vals[1], vals[2], vals[3], vals[4], vals[5], vals[6]
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
