package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Sidecar kinds.
const (
	SidecarKindArtwork = "artwork"
	SidecarKindInfo    = "info"
)

// Sidecar tracks an auxiliary file (artwork, info) associated with a
// series directory or a book file by naming convention. Tracked by
// (url, last_modified) so only genuinely newer sidecars trigger a
// refresh task.
type Sidecar struct {
	bun.BaseModel `bun:"table:sidecars,alias:sc"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LibraryID int       `bun:",nullzero" json:"library_id"`

	URL string `bun:",nullzero" json:"url"`
	// ParentURL is the url of the owning series directory or book file.
	ParentURL    string    `bun:",nullzero" json:"parent_url"`
	Kind         string    `bun:",nullzero" json:"kind"`
	LastModified time.Time `json:"last_modified"`
}
