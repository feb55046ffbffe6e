package encoder

import (
	"github.com/qrstack/qrstack/bitutil"
)

// DefaultQuietZone is the quiet zone width in modules on each side of the
// symbol, per the QR code specification.
const DefaultQuietZone = 4

// RenderResult scales the module grid to fill a width x height bit matrix.
// The output is at least large enough to hold the grid plus the quiet zone
// at one pixel per module; within the requested size the grid is drawn at
// the largest whole-pixel multiple that fits and centered, so the quiet
// zone absorbs any remainder.
func RenderResult(code *QRCode, width, height, quietZone int) *bitutil.BitMatrix {
	input := code.Matrix
	inputWidth := input.Width
	inputHeight := input.Height
	qrWidth := inputWidth + quietZone*2
	qrHeight := inputHeight + quietZone*2
	outputWidth := width
	if outputWidth < qrWidth {
		outputWidth = qrWidth
	}
	outputHeight := height
	if outputHeight < qrHeight {
		outputHeight = qrHeight
	}

	multiple := outputWidth / qrWidth
	if h := outputHeight / qrHeight; h < multiple {
		multiple = h
	}

	leftPadding := (outputWidth - inputWidth*multiple) / 2
	topPadding := (outputHeight - inputHeight*multiple) / 2

	output := bitutil.NewBitMatrixWithSize(outputWidth, outputHeight)

	for inputY := 0; inputY < inputHeight; inputY++ {
		outputY := topPadding + inputY*multiple
		for inputX := 0; inputX < inputWidth; inputX++ {
			if input.Get(inputX, inputY) == 1 {
				outputX := leftPadding + inputX*multiple
				output.SetRegion(outputX, outputY, multiple, multiple)
			}
		}
	}

	return output
}

// RenderDotsPerModule draws every module as a dotsPerModule square block,
// so the output size follows from the grid rather than a requested box.
// The quiet zone is four modules total, two on each side.
func RenderDotsPerModule(code *QRCode, dotsPerModule int) *bitutil.BitMatrix {
	input := code.Matrix
	inputWidth := input.Width
	inputHeight := input.Height
	qrWidth := inputWidth + DefaultQuietZone
	qrHeight := inputHeight + DefaultQuietZone
	outputWidth := qrWidth * dotsPerModule
	outputHeight := qrHeight * dotsPerModule

	leftPadding := DefaultQuietZone * dotsPerModule / 2
	topPadding := leftPadding

	output := bitutil.NewBitMatrixWithSize(outputWidth, outputHeight)

	for inputY := 0; inputY < inputHeight; inputY++ {
		outputY := topPadding + inputY*dotsPerModule
		for inputX := 0; inputX < inputWidth; inputX++ {
			if input.Get(inputX, inputY) == 1 {
				outputX := leftPadding + inputX*dotsPerModule
				output.SetRegion(outputX, outputY, dotsPerModule, dotsPerModule)
			}
		}
	}

	return output
}
