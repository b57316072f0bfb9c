package receipts

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// StampRobotImage overlays the robot png onto the receipt pdf, writing a
// second decorated file. The undecorated original stays in place.
func StampRobotImage(receiptPath, imagePath, outPath string) error {
	wm, err := api.ImageWatermark(imagePath, "scale:0.4 rel, pos:c", true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("build image stamp: %w", err)
	}
	if err := api.AddWatermarksFile(receiptPath, outPath, nil, wm, nil); err != nil {
		return fmt.Errorf("stamp receipt %q: %w", receiptPath, err)
	}
	return nil
}
