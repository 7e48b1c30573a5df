package media

import (
	"image"
	"log"

	"gocv.io/x/gocv"

	"github.com/drishyamitra/photobackend/apperr"
	"github.com/drishyamitra/photobackend/recognition"
)

// DNNEmbedder extracts face embedding vectors with an OpenCV DNN recognition
// model (ArcFace or FaceNet style). Embeddings are L2-normalized before being
// returned, so downstream cosine similarity is well conditioned.
type DNNEmbedder struct {
	Net       gocv.Net
	Enabled   bool
	modelName string

	InputSizeW int
	InputSizeH int
}

// Ensure DNNEmbedder implements Embedder
var _ Embedder = (*DNNEmbedder)(nil)

// NewDNNEmbedder loads a recognition model. A missing path or load failure
// yields a disabled embedder that extracts nothing; detection still works.
func NewDNNEmbedder(modelPath, modelName string) *DNNEmbedder {
	if modelName == "" {
		modelName = "arcface"
	}
	if modelPath == "" {
		log.Println("recognition(dnn): model path is empty, disabling embedder")
		return &DNNEmbedder{Enabled: false, modelName: modelName}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		log.Printf("recognition(dnn): ERROR loading %s model from %s", modelName, modelPath)
		return &DNNEmbedder{Enabled: false, modelName: modelName}
	}
	log.Printf("recognition(dnn): successfully loaded %s model", modelName)

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	inputW, inputH := 112, 112
	if modelName == "facenet" {
		inputW, inputH = 160, 160
	}

	return &DNNEmbedder{
		Net:        net,
		Enabled:    true,
		modelName:  modelName,
		InputSizeW: inputW,
		InputSizeH: inputH,
	}
}

// ModelName returns the tag stored alongside every embedding this model
// produces.
func (e *DNNEmbedder) ModelName() string {
	return e.modelName
}

// Close releases the underlying network.
func (e *DNNEmbedder) Close() {
	if e != nil && e.Enabled {
		e.Net.Close()
		log.Printf("recognition(dnn): closed %s network", e.modelName)
		e.Enabled = false
	}
}

// ExtractEmbedding crops the padded face region from the image and runs it
// through the recognition network. A disabled embedder reports
// ErrExtractionUnavailable; a degenerate crop yields (nil, nil).
func (e *DNNEmbedder) ExtractEmbedding(imageBytes []byte, box BoundingBox) ([]float32, error) {
	if e == nil || !e.Enabled {
		return nil, apperr.ErrExtractionUnavailable
	}
	if len(imageBytes) == 0 {
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

	rect := PixelRect(box, DefaultCropPadding, img.Cols(), img.Rows())
	if rect.Empty() {
		return nil, nil
	}

	faceRegion := img.Region(rect)
	defer faceRegion.Close()

	// recognition models expect RGB input normalized to [0,1]
	rgb := gocv.NewMat()
	gocv.CvtColor(faceRegion, &rgb, gocv.ColorBGRToRGB)
	defer rgb.Close()

	blob := gocv.BlobFromImage(rgb, 1.0/255.0, image.Pt(e.InputSizeW, e.InputSizeH),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	e.Net.SetInput(blob, "")
	output := e.Net.Forward("")
	defer output.Close()

	flattened := output.Reshape(1, 1)
	defer flattened.Close()

	embedding := make([]float32, flattened.Cols())
	for i := 0; i < len(embedding); i++ {
		embedding[i] = flattened.GetFloatAt(0, i)
	}

	return recognition.NormalizeEmbedding(embedding), nil
}
