package providers

import (
	"github.com/samber/do/v2"

	"github.com/glazepal/glazepal/internal/config"
	"github.com/glazepal/glazepal/internal/logger"
	"github.com/glazepal/glazepal/internal/media/images"
)

// ProvideImageResolver provides the picked-image resolver backed by the
// local image directory. Public upload is not configured.
func ProvideImageResolver(i do.Injector) (*images.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorage(cfg.ImagesPath())
	if err != nil {
		return nil, err
	}
	return images.NewResolver(storage, images.NoopUploader{}, log.Component("images")), nil
}
