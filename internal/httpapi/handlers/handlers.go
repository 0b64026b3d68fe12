// Package handlers implements the reelcast HTTP endpoints.
package handlers

import (
	"context"

	"reelcast/internal/models"
	"reelcast/internal/narration"
	"reelcast/internal/pkg/logger"
	"reelcast/internal/ports"
	"reelcast/internal/render"
)

// CredentialHeader carries a caller-supplied narration API key.
const CredentialHeader = narration.CredentialHeader

// JobRepository is the part of the render job store the API reads and writes.
type JobRepository interface {
	Create(ctx context.Context, j *models.RenderJob) error
	Get(ctx context.Context, id string) (*models.RenderJob, error)
	List(ctx context.Context, status models.JobStatus, limit int) ([]models.RenderJob, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// JobQueue receives ids of newly created jobs.
type JobQueue interface {
	Push(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
}

// Renderer runs a synchronous render.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
}

// EngineChecker verifies the encode engine is usable.
type EngineChecker interface {
	Load(ctx context.Context) error
}

type Deps struct {
	Repo     JobRepository
	Queue    JobQueue
	SP       ports.StorageProvider
	Renderer Renderer
	// Narrator may be nil; /narration then answers 503.
	Narrator narration.Provider
	Engine   EngineChecker
	Log      *logger.Logger
	// MaxTextBytes caps request bodies; zero means no cap.
	MaxTextBytes int64
}

type Handler struct {
	repo     JobRepository
	queue    JobQueue
	sp       ports.StorageProvider
	renderer Renderer
	narrator narration.Provider
	engine   EngineChecker
	log      *logger.Logger
	maxBody  int64
}

func New(d Deps) *Handler {
	return &Handler{
		repo:     d.Repo,
		queue:    d.Queue,
		sp:       d.SP,
		renderer: d.Renderer,
		narrator: d.Narrator,
		engine:   d.Engine,
		log:      logger.OrDefault(d.Log).WithComponent("api"),
		maxBody:  d.MaxTextBytes,
	}
}

// textRequest is the body of /renders, /jobs and /narration.
type textRequest struct {
	Name string `json:"name,omitempty"`
	Text string `json:"text"`
}
