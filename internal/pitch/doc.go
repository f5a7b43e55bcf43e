// Package pitch computes and classifies the calcaneal pitch angle.
//
// # Angle
//
// The pitch angle is the absolute slope of the line from the heel point A to
// the toe point B:
//
//	angle = atan(|dy| / |dx|)   (degrees, dx == 0 gives 90)
//
// so it always lies in [0, 90] regardless of orientation. The value is
// rounded to one decimal before classification.
//
// # Classification
//
//	angle < 15        Pes Planus   #ff0000
//	15 <= angle < 20  Borderline   #ffae00
//	20 <= angle <= 30 Normal       #00ff00
//	angle > 30        Pes Cavus    #ff0000
//
// Classify is a pure function of the angle. Out-of-range angles are data,
// not errors.
//
// # Manual Measurements
//
// LineAngle and GradeMeary support free-hand measurements where a reviewer
// draws two lines; they are independent of the automatic landmark path.
package pitch
