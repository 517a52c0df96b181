package main

import (
	"fmt"

	"github.com/rodaine/table"

	"github.com/TuSKan/ngff-pixelbuffer/pixelbuffer"
)

func printInfo(pb *pixelbuffer.PixelBuffer) {
	tbl := table.New("Property", "Value")
	tbl.AddRow("SizeX", pb.SizeX())
	tbl.AddRow("SizeY", pb.SizeY())
	tbl.AddRow("SizeZ", pb.SizeZ())
	tbl.AddRow("SizeC", pb.SizeC())
	tbl.AddRow("SizeT", pb.SizeT())

	tileW, tileH := pb.TileSize()
	tbl.AddRow("Tile size", fmt.Sprintf("%dx%d", tileW, tileH))
	tbl.AddRow("Pixel type", pb.GetPixelsType())
	tbl.AddRow("Byte width", pb.ByteWidth())
	tbl.AddRow("Signed", pb.IsSigned())
	tbl.AddRow("Float", pb.IsFloat())
	tbl.AddRow("Resolution levels", pb.ResolutionLevels())
	tbl.Print()

	fmt.Println()
	levels := table.New("Level", "Width", "Height")
	for i, d := range pb.ResolutionDescriptions() {
		levels.AddRow(i, d.Width, d.Height)
	}
	levels.Print()
}
