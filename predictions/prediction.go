// Package predictions - Data model for decoded object detection predictions.
package predictions

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// FieldCount is the number of values that describe a single prediction.
const FieldCount = 6

// Field indexes along the last axis of a prediction row.
const (
	FieldClassID = iota
	FieldConfidence
	FieldXMin
	FieldYMin
	FieldXMax
	FieldYMax
)

// Prediction is a single decoded detection: the class, its confidence and the
// box corners in the coordinate space of the image the model saw.
type Prediction struct {
	// The predicted class index, stored as a float like the rest of the row.
	ClassID float32 `json:"class_id" yaml:"class_id"`
	// The confidence score of the prediction.
	Confidence float32 `json:"confidence" yaml:"confidence"`
	// XMin,YMin is the top-left corner, XMax,YMax the bottom-right corner.
	XMin float32 `json:"xmin" yaml:"xmin"`
	YMin float32 `json:"ymin" yaml:"ymin"`
	XMax float32 `json:"xmax" yaml:"xmax"`
	YMax float32 `json:"ymax" yaml:"ymax"`
}

// PredictionFromValues builds a prediction from one row of FieldCount values.
//
// Arguments:
//   - values: The row in field order (class, confidence, xmin, ymin, xmax, ymax).
//
// Returns:
//   - Prediction: The decoded prediction.
//   - error: ErrFieldCount if the row does not hold exactly FieldCount values.
//
// @example
// p, err := PredictionFromValues([]float32{1, 0.9, 0, 0, 10, 10})
func PredictionFromValues(values []float32) (Prediction, error) {
	if len(values) != FieldCount {
		return Prediction{}, errors.Wrapf(ErrFieldCount, "got %d values", len(values))
	}
	return Prediction{
		ClassID:    values[FieldClassID],
		Confidence: values[FieldConfidence],
		XMin:       values[FieldXMin],
		YMin:       values[FieldYMin],
		XMax:       values[FieldXMax],
		YMax:       values[FieldYMax],
	}, nil
}

// Values returns the prediction as a row in field order.
func (p Prediction) Values() [FieldCount]float32 {
	return [FieldCount]float32{p.ClassID, p.Confidence, p.XMin, p.YMin, p.XMax, p.YMax}
}

// Class returns the class ID as an integer index.
func (p Prediction) Class() int {
	return int(p.ClassID)
}

// Rect converts the box to an image.Rectangle.
//
// This loses the fractional part of every corner, which is fine for drawing
// and for rough overlap checks but not for evaluation.
//
// @example
// p := Prediction{XMin: 100.5, YMin: 100.5, XMax: 200.5, YMax: 300.5}
// rect := p.Rect() // (100,100)-(200,300)
func (p Prediction) Rect() image.Rectangle {
	return image.Rect(int(p.XMin), int(p.YMin), int(p.XMax), int(p.YMax)).Canon()
}

// Area returns the box area. Inverted boxes have zero area.
func (p Prediction) Area() float32 {
	w := p.XMax - p.XMin
	h := p.YMax - p.YMin
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func (p Prediction) String() string {
	return fmt.Sprintf("Class %d (confidence %f): (%f, %f), (%f, %f)",
		p.Class(), p.Confidence, p.XMin, p.YMin, p.XMax, p.YMax)
}

// approxEqual compares two predictions field by field within tol.
func (p Prediction) approxEqual(o Prediction, tol float32) bool {
	a, b := p.Values(), o.Values()
	for i := range a {
		if math32.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
