// Package extensions wires the built-in extension kinds into a registry.
package extensions

import (
	"sync"

	"github.com/lysyi3m/argot/app/extensions/content"
	"github.com/lysyi3m/argot/app/extensions/creativecommons"
	"github.com/lysyi3m/argot/app/extensions/dublincore"
	"github.com/lysyi3m/argot/app/extensions/feedburner"
	"github.com/lysyi3m/argot/app/extensions/geo"
	"github.com/lysyi3m/argot/app/extensions/itunes"
	"github.com/lysyi3m/argot/app/extensions/slash"
	"github.com/lysyi3m/argot/app/extensions/trackback"
	"github.com/lysyi3m/argot/app/extensions/wellformedweb"
	"github.com/lysyi3m/argot/app/syndication"
)

// NewRegistry returns a registry holding every built-in extension kind.
func NewRegistry() *syndication.Registry {
	r := syndication.NewRegistry()
	r.MustRegister(
		content.Factory,
		creativecommons.Factory,
		dublincore.Factory,
		feedburner.Factory,
		geo.Factory,
		itunes.Factory,
		slash.Factory,
		trackback.Factory,
		wellformedweb.Factory,
	)
	return r
}

// Default is the shared registry of built-in extensions, built on first use.
var Default = sync.OnceValue(NewRegistry)

func DefaultLoadSettings() syndication.LoadSettings {
	return syndication.DefaultLoadSettings(Default())
}
