package audit

import (
	"github.com/propworks/rentaudit/internal/ingest"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(ingest.NewImporter),
	fx.Provide(NewService),
)
