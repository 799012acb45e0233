// Package api holds the shared building blocks of the Cloudinary API
// client: parameter normalization, request signing, response parsing
// and the error taxonomy.
package api

// Service endpoints and shared hosts
const (
	// BaseURL is the default API prefix, overridden by upload_prefix
	BaseURL = "https://api.cloudinary.com"

	// APIVersion is the version path segment of all API URLs
	APIVersion = "v1_1"

	// SharedCDN is the host of the shared delivery distribution
	SharedCDN = "res.cloudinary.com"

	// OldAkamaiSharedCDN is the legacy Akamai shared distribution host
	OldAkamaiSharedCDN = "cloudinary-a.akamaihd.net"

	// CFSharedCDN is the legacy CloudFront shared distribution host
	CFSharedCDN = "d3jpl91pxevbkh.cloudfront.net"
)

// UserAgent is sent with every request
const UserAgent = "CloudinaryGo/1.0.0"

// AssetType is the type of the asset (resource_type in API terms)
type AssetType string

// Asset types understood by the service
const (
	Image AssetType = "image"
	Video AssetType = "video"
	File  AssetType = "raw"
	Auto  AssetType = "auto"
)

func (a AssetType) String() string {
	if a == "" {
		return string(Image)
	}
	return string(a)
}

// DeliveryType is the storage/delivery type of the asset
type DeliveryType string

// Delivery types understood by the service
const (
	Upload        DeliveryType = "upload"
	Private       DeliveryType = "private"
	Authenticated DeliveryType = "authenticated"
	Fetch         DeliveryType = "fetch"
	Asset         DeliveryType = "asset"
)

func (d DeliveryType) String() string {
	if d == "" {
		return string(Upload)
	}
	return string(d)
}
