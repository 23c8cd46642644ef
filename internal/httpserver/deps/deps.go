package deps

import (
	"time"

	"aitool-hub/internal/auth"
	"aitool-hub/internal/logger"
	"aitool-hub/internal/port"
	"aitool-hub/internal/service/discovery"
	"aitool-hub/internal/service/enrichment"
	"aitool-hub/internal/service/studio"
	"aitool-hub/internal/service/video"
	"aitool-hub/internal/store"
)

type Deps struct {
	Logger           logger.Logger
	StartTime        time.Time
	Version          string
	Catalog          *store.Catalog       // Single source of truth for tools, prompts, videos and users
	Discovery        *discovery.Service   // Fallback-chain lists (cache -> webhook -> generative -> static)
	Enricher         *enrichment.Enricher // Fills missing tool fields on read
	Resolver         *video.Resolver      // Lazy platform id lookup on first playback
	Auth             *auth.Simulator      // Simulated session
	Studio           *studio.Service      // Chat stream and image generation
	Importer         port.ToolImporter    // GitHub topic import (nil => endpoint disabled)
	ImportMaxDaysOld int                  // Default age limit for imported repositories
	RefreshTrigger   func()               // Manual discovery refresh (nil if no poller)
}
