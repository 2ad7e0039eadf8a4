package cli

import (
	"go.uber.org/zap"

	"github.com/runnerkit/hello-service/internal/config"
	"github.com/runnerkit/hello-service/internal/storage"
)

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// loadConfig is shared by every command; configuration errors are fatal.
func loadConfig(path string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// stores builds the media (bucket root, never overwrites) and static
// (static/ prefix, overwrites) stores over one S3 client.
func stores(cfg *config.Config) (media, static *storage.S3Store, err error) {
	sess, err := storage.NewSession(cfg.S3Region)
	if err != nil {
		return nil, nil, err
	}
	client := storage.NewS3Client(sess)

	base := storage.Options{
		Bucket:           cfg.S3Bucket,
		Region:           cfg.S3Region,
		CustomDomain:     cfg.S3CustomDomain,
		ObjectParameters: cfg.S3ObjectParameters,
	}

	mediaOpts := base
	mediaOpts.Location = storage.LocationMedia

	staticOpts := base
	staticOpts.Location = storage.LocationStatic
	staticOpts.Overwrite = true

	return storage.NewS3Store(client, mediaOpts), storage.NewS3Store(client, staticOpts), nil
}
