package filter

import (
	"bytes"
	"fmt"
	"io"
)

// applyPredictor wraps r with PNG/TIFF predictor post-processing if the
// /DecodeParms /Predictor entry calls for it. Predictor 1 (or absent) means
// no post-processing.
func applyPredictor(r io.Reader, params map[string]int) (io.Reader, error) {
	predictor := params["Predictor"]
	switch predictor {
	case 0, 1, 2, 10, 11, 12, 13, 14, 15:
	default:
		return nil, fmt.Errorf("unsupported Predictor %d", predictor)
	}
	if predictor == 0 || predictor == 1 {
		return r, nil
	}

	colors := params["Colors"]
	if colors == 0 {
		colors = 1
	}
	bpc := params["BitsPerComponent"]
	if bpc == 0 {
		bpc = 8
	}
	columns := params["Columns"]
	if columns == 0 {
		columns = 1
	}

	rowSize := bpc * colors * columns / 8
	if predictor != 2 {
		rowSize++ // PNG rows are prefixed by a filter-type byte
	}
	bytesPerPixel := (bpc*colors + 7) / 8

	decoded, err := decodePredictorRows(r, rowSize, predictor, colors, bytesPerPixel)
	if err != nil {
		return nil, err
	}
	plainRowSize := bpc * colors * columns / 8
	if plainRowSize > 0 && len(decoded)%plainRowSize != 0 {
		return nil, fmt.Errorf("predictor: output size %d not a multiple of row size %d", len(decoded), plainRowSize)
	}
	return bytes.NewReader(decoded), nil
}

func decodePredictorRows(r io.Reader, rowSize, predictor, colors, bytesPerPixel int) ([]byte, error) {
	cur := make([]byte, rowSize)
	prev := make([]byte, rowSize)
	var out []byte

	for {
		if _, err := io.ReadFull(r, cur); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, err
		}

		row, err := unfilterRow(prev, cur, predictor, colors, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out = append(out, row...)
		prev, cur = cur, prev
	}
	return out, nil
}

func unfilterRow(prev, cur []byte, predictor, colors, bpp int) ([]byte, error) {
	if predictor == 2 {
		return unfilterTIFF(cur, colors), nil
	}

	tag := cur[0]
	data := cur[1:]
	prevData := prev[1:]

	switch tag {
	case 0: // None
	case 1: // Sub
		for i := bpp; i < len(data); i++ {
			data[i] += data[i-bpp]
		}
	case 2: // Up
		for i, p := range prevData {
			data[i] += p
		}
	case 3: // Average
		for i := 0; i < bpp; i++ {
			data[i] += prevData[i] / 2
		}
		for i := bpp; i < len(data); i++ {
			data[i] += byte((int(data[i-bpp]) + int(prevData[i])) / 2)
		}
	case 4: // Paeth
		paethUnfilter(data, prevData, bpp)
	default:
		return nil, fmt.Errorf("predictor: unknown PNG filter type %d", tag)
	}
	return data, nil
}

func unfilterTIFF(row []byte, colors int) []byte {
	for i := 1; i < len(row)/colors; i++ {
		for c := 0; c < colors; c++ {
			row[i*colors+c] += row[(i-1)*colors+c]
		}
	}
	return row
}

func paethUnfilter(cur, prev []byte, bpp int) {
	for i := 0; i < bpp; i++ {
		var a, c int32
		for j := i; j < len(cur); j += bpp {
			b := int32(prev[j])
			pred := paethPredictor(a, b, c)
			cur[j] += byte(pred)
			c = b
			a = int32(cur[j])
		}
	}
}

func paethPredictor(a, b, c int32) int32 {
	p := a + b - c
	pa, pb, pc := abs32(p-a), abs32(p-b), abs32(p-c)
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	default:
		return c
	}
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
