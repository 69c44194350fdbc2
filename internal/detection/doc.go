// Package detection defines the detection records exchanged between the
// detector, the grouping engine and the visualizer.
//
// A detection carries a bounding box, a class label and a confidence score as
// produced by an external object detector. Grouping annotates a detection with
// a group label and a display color; detections that could not be grouped keep
// both fields nil so they serialize exactly as they were received.
//
// # Coordinate System
//
// Bounding boxes use the standard image convention:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward, Y increases downward
//   - (x1, y1) is inclusive, (x2, y2) is exclusive
//
// Fractional coordinates are truncated toward zero when converted to a Region.
//
// # JSON Shape
//
//	{"bbox": [x1, y1, x2, y2], "confidence": 0.93, "class": "product",
//	 "group": 0, "color": [0, 255, 0]}
//
// The group and color keys are omitted for detections that were not grouped.
package detection
