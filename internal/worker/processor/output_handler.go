package processor

import (
	"bytes"
	"context"
	"fmt"

	"reelcast/internal/ports"
)

// VideoContentType is the MIME type of every rendered artifact.
const VideoContentType = "video/mp4"

// OutputKey is where a job's video is stored.
func OutputKey(jobID string) string {
	return "renders/" + jobID + "/short.mp4"
}

// OutputHandler uploads finished videos to storage.
type OutputHandler struct {
	sp ports.StorageProvider
}

func NewOutputHandler(sp ports.StorageProvider) *OutputHandler {
	return &OutputHandler{sp: sp}
}

// Store uploads video under the job's output key.
func (oh *OutputHandler) Store(ctx context.Context, jobID string, video []byte) (ports.PutObjectOutput, error) {
	if len(video) == 0 {
		return ports.PutObjectOutput{}, fmt.Errorf("empty video for job %s", jobID)
	}
	out, err := oh.sp.PutObject(ctx, ports.PutObjectInput{
		ObjectKey:   OutputKey(jobID),
		ContentType: VideoContentType,
		Reader:      bytes.NewReader(video),
		Size:        int64(len(video)),
	})
	if err != nil {
		return ports.PutObjectOutput{}, fmt.Errorf("failed to upload video: %w", err)
	}
	return out, nil
}

// Provider names the backing storage.
func (oh *OutputHandler) Provider() string {
	return oh.sp.Provider()
}
