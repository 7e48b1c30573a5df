package media

import (
	"image"
	"log"

	"gocv.io/x/gocv"
)

// DNNFaceDetector detects faces with an OpenCV DNN SSD model. The standard
// res10 300x300 caffe model outputs normalized coordinates, which map directly
// onto the relative bounding boxes stored on Face records.
type DNNFaceDetector struct {
	Net     gocv.Net
	Enabled bool

	InputSizeW    int
	InputSizeH    int
	ScaleFactor   float64
	MeanVal       gocv.Scalar
	ConfThreshold float32
}

// Ensure DNNFaceDetector implements Detector
var _ Detector = (*DNNFaceDetector)(nil)

// NewDNNFaceDetector loads the DNN model. An empty path or a load failure
// yields a disabled detector that reports zero faces rather than an error, so
// the rest of the pipeline keeps working without recognition.
func NewDNNFaceDetector(configPath, modelPath string) *DNNFaceDetector {
	if configPath == "" || modelPath == "" {
		log.Println("detection(dnn): config or model path is empty, disabling DNN detector")
		return &DNNFaceDetector{Enabled: false}
	}

	net := gocv.ReadNet(modelPath, configPath)
	if net.Empty() {
		log.Printf("detection(dnn): ERROR loading network model: config=%s, model=%s", configPath, modelPath)
		return &DNNFaceDetector{Enabled: false}
	}
	log.Printf("detection(dnn): successfully loaded face detection model")

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNFaceDetector{
		Net:           net,
		Enabled:       true,
		InputSizeW:    300,
		InputSizeH:    300,
		ScaleFactor:   1.0,
		MeanVal:       gocv.NewScalar(104.0, 177.0, 123.0, 0),
		ConfThreshold: 0.5,
	}
}

// Close releases the underlying network.
func (d *DNNFaceDetector) Close() {
	if d != nil && d.Enabled {
		d.Net.Close()
		log.Println("detection(dnn): closed network")
		d.Enabled = false
	}
}

// DetectFaces decodes the image and runs face detection, returning relative
// bounding boxes with confidence.
func (d *DNNFaceDetector) DetectFaces(imageBytes []byte) ([]Detection, error) {
	if d == nil || !d.Enabled || len(imageBytes) == 0 {
		return nil, nil
	}

	img, err := gocv.IMDecode(imageBytes, gocv.IMReadColor)
	if err != nil {
		return nil, err
	}
	defer img.Close()
	if img.Empty() {
		return nil, nil
	}

	blob := gocv.BlobFromImage(img, d.ScaleFactor, image.Pt(d.InputSizeW, d.InputSizeH), d.MeanVal, false, false)
	defer blob.Close()

	d.Net.SetInput(blob, "")
	output := d.Net.Forward("")
	defer output.Close()

	sizes := output.Size()
	if len(sizes) != 4 || sizes[2] == 0 {
		return nil, nil
	}
	numDetections := sizes[2]

	// reshape the [1,1,N,7] output to 2D [N,7] for GetFloatAt(row, col)
	flat := output.Reshape(1, numDetections)
	defer flat.Close()

	var detections []Detection
	for i := 0; i < numDetections; i++ {
		confidence := flat.GetFloatAt(i, 2)
		if confidence < d.ConfThreshold {
			continue
		}

		// columns 3..6 are normalized [x1, y1, x2, y2]
		x1 := clamp01(float64(flat.GetFloatAt(i, 3)))
		y1 := clamp01(float64(flat.GetFloatAt(i, 4)))
		x2 := clamp01(float64(flat.GetFloatAt(i, 5)))
		y2 := clamp01(float64(flat.GetFloatAt(i, 6)))
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		detections = append(detections, Detection{
			Box: BoundingBox{
				X:      x1,
				Y:      y1,
				Width:  x2 - x1,
				Height: y2 - y1,
			},
			Confidence: float64(confidence),
		})
	}

	return detections, nil
}
