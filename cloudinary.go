// Package cloudinary is a client library for the Cloudinary media
// service: delivery URL generation, signed and chunked uploads, and
// the management APIs.
package cloudinary

import (
	"github.com/go-cloudinary/cloudinary/admin"
	"github.com/go-cloudinary/cloudinary/config"
	"github.com/go-cloudinary/cloudinary/delivery"
	"github.com/go-cloudinary/cloudinary/mo"
	"github.com/go-cloudinary/cloudinary/uploader"
)

// Cloudinary bundles the per-account facades over one configuration
type Cloudinary struct {
	Config config.Config

	Upload *uploader.API
	Admin  *admin.API
	MO     *mo.API
}

// New creates a client from the environment (CLOUDINARY_URL or the
// individual variables)
func New() (*Cloudinary, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg)
}

// NewFromURL creates a client from a cloudinary:// connection string
func NewFromURL(cloudinaryURL string) (*Cloudinary, error) {
	cfg, err := config.FromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg)
}

// NewFromParams creates a client from the three account credentials
func NewFromParams(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	return NewFromConfig(config.FromParams(cloudName, apiKey, apiSecret))
}

// NewFromConfig creates a client from an explicit configuration
func NewFromConfig(cfg *config.Config) (*Cloudinary, error) {
	up, err := uploader.New(cfg)
	if err != nil {
		return nil, err
	}
	adm, err := admin.New(cfg)
	if err != nil {
		return nil, err
	}
	optimizer, err := mo.New(cfg)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{
		Config: *cfg,
		Upload: up,
		Admin:  adm,
		MO:     optimizer,
	}, nil
}

// URL builds a delivery URL for an asset
func (c *Cloudinary) URL(source string, o delivery.Options) (string, error) {
	return delivery.URL(c.Config, source, o)
}
