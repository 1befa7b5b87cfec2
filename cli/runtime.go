package cli

import (
	"context"
	"os"
	"os/user"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/dirkpetersen/froster-go/archiver"
	"github.com/dirkpetersen/froster-go/blobcopy"
	"github.com/dirkpetersen/froster-go/blobcopy/rclone"
	"github.com/dirkpetersen/froster-go/config"
	"github.com/dirkpetersen/froster-go/deleter"
	"github.com/dirkpetersen/froster-go/glacier"
	"github.com/dirkpetersen/froster-go/registry"
	"github.com/dirkpetersen/froster-go/restorer"
)

// runtime wires one invocation's config, registry, copier and
// orchestrators together, the way App.openRepository wires a
// repo.Repository in the teacher.
type runtime struct {
	cfg      config.Config
	reg      *registry.Registry
	copier   blobcopy.Copier
	glacier  *glacier.Controller
	user     string
}

func newRuntime(cfg config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	rt.reg = registry.Open(cfg.RegistryFile)

	rt.copier = rclone.New(rclone.Options{
		Profile:      cfg.Profile,
		Region:       cfg.Region,
		StorageClass: cfg.StorageClass,
		Bucket:       cfg.Bucket,
	})

	if cfg.StorageClass == registry.Glacier || cfg.StorageClass == registry.DeepArchive {
		client, err := newMinioClient(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "creating S3 client for glacier restore checks")
		}

		rt.glacier = glacier.New(client, cfg.Bucket)
	}

	if u, err := user.Current(); err == nil {
		rt.user = u.Username
	} else {
		rt.user = os.Getenv("USER")
	}

	return rt, nil
}

// newMinioClient authenticates the way the rclone copier's environment
// variables do: AWS credentials from the process environment first,
// falling back to the named profile in the shared credentials file,
// matching the froster
// original's AWS profile/env-var credential sourcing (no interactive
// login, no stored secrets of our own).
func newMinioClient(cfg config.Config) (*minio.Client, error) {
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.FileAWSCredentials{Profile: cfg.Profile},
	})

	endpoint := "s3.amazonaws.com"
	if cfg.Region != "" && cfg.Region != "us-east-1" {
		endpoint = "s3." + cfg.Region + ".amazonaws.com"
	}

	return minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: true,
		Region: cfg.Region,
	})
}

func (rt *runtime) archiver() *archiver.Archiver {
	return archiver.New(rt.copier, rt.reg, rt.cfg, rt.user)
}

func (rt *runtime) restorer() *restorer.Restorer {
	return restorer.New(rt.copier, rt.reg, rt.glacier)
}

func (rt *runtime) deleter() *deleter.Deleter {
	return deleter.New(rt.copier, rt.reg, rt.user, rt.cfg.Email)
}

// loadConfig reads configPath, falling back to config.Default() when
// the file does not exist yet (a fresh install has no config file
// until the user writes one; spec.md §1 excludes an onboarding wizard,
// so Default() plus flag overrides is the whole story).
func loadConfig(ctx context.Context, configPath string) (config.Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config.Default(), nil
	}

	return config.Load(configPath)
}
