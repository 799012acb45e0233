package uploader

import (
	"bytes"
	"context"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/go-cloudinary/cloudinary/api"
	"github.com/go-cloudinary/cloudinary/cache"
	"github.com/go-cloudinary/cloudinary/lib/random"
	"github.com/go-cloudinary/cloudinary/transformation"
)

// Chunk sizing for UploadLarge.  The service rejects chunks below the
// floor.
const (
	DefaultChunkSize = 20 << 20
	MinChunkSize     = 5242880
)

// remoteFileRe matches sources the server fetches itself, which
// travel as a plain form field instead of an attached file
var remoteFileRe = regexp.MustCompile(`(?i)^ftp:|^https?:|^s3:|^gs:|^data:`)

// openFile turns the accepted file forms into a reader: an io.Reader
// is streamed as-is and left open, bytes are wrapped and a string is
// opened as a local path
func openFile(file interface{}) (io.Reader, func(), error) {
	switch f := file.(type) {
	case io.Reader:
		return f, func() {}, nil
	case []byte:
		return bytes.NewReader(f), func() {}, nil
	case string:
		fh, err := os.Open(f)
		if err != nil {
			return nil, nil, err
		}
		return fh, func() { _ = fh.Close() }, nil
	}
	return nil, nil, api.NewErrorf(api.BadRequest, "unsupported file type %T", file)
}

// Upload uploads an asset.
//
// file may be a local path, an io.Reader, raw bytes, a data: URI or a
// remote ftp/http/s3/gs URL, which the server fetches itself.
func (u *API) Upload(ctx context.Context, file interface{}, p *UploadParams) (*api.Response, error) {
	return u.upload(ctx, file, p, false)
}

// UnsignedUpload uploads using an unsigned upload preset, with no
// credentials attached
func (u *API) UnsignedUpload(ctx context.Context, file interface{}, uploadPreset string, p *UploadParams) (*api.Response, error) {
	if p == nil {
		p = &UploadParams{}
	}
	p.UploadPreset = uploadPreset
	return u.upload(ctx, file, p, true)
}

func (u *API) upload(ctx context.Context, file interface{}, p *UploadParams, unsigned bool) (*api.Response, error) {
	params, err := p.buildParams()
	if err != nil {
		return nil, err
	}
	resourceType := uploadResourceType(p)

	key, cached := u.probeBreakpoints(p, params)
	co := callOptions{unsigned: unsigned}
	if s, ok := file.(string); ok && remoteFileRe.MatchString(s) {
		params["file"] = s
	} else {
		co.file = file
	}
	resp, err := u.call(ctx, resourceType, "upload", params, co)
	if err != nil {
		return nil, err
	}
	if !cached {
		u.storeBreakpoints(key, resp)
	}
	return resp, nil
}

// UploadLarge uploads in chunks of chunkSize bytes (0 selects the
// default), all chunks sharing one upload session.  The final chunk's
// response is the server's authoritative result.  Remote URLs fall
// back to Upload since the server fetches those in one piece.
func (u *API) UploadLarge(ctx context.Context, file interface{}, p *UploadParams, chunkSize int64) (*api.Response, error) {
	if s, ok := file.(string); ok && remoteFileRe.MatchString(s) {
		return u.Upload(ctx, file, p)
	}
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < MinChunkSize {
		chunkSize = MinChunkSize
	}

	params, err := p.buildParams()
	if err != nil {
		return nil, err
	}
	resourceType := uploadResourceType(p)
	// one timestamp for the whole session so every chunk carries the
	// same signature
	params["timestamp"] = timeNow().Unix()

	in, cleanup, err := openFile(file)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	total := sourceSize(file, in)

	uploadID, err := random.ID(16)
	if err != nil {
		return nil, err
	}

	var (
		resp   *api.Response
		offset int64
		buf    = make([]byte, chunkSize)
	)
	for {
		n, readErr := io.ReadFull(in, buf)
		if n > 0 {
			totalStr := "*"
			if total >= 0 {
				totalStr = strconv.FormatInt(total, 10)
			}
			co := callOptions{
				file:     bytes.NewReader(buf[:n]),
				fileName: "file",
				extraHeader: map[string]string{
					"X-Unique-Upload-Id": uploadID,
					"Content-Range": "bytes " + strconv.FormatInt(offset, 10) + "-" +
						strconv.FormatInt(offset+int64(n)-1, 10) + "/" + totalStr,
				},
			}
			resp, err = u.call(ctx, resourceType, "upload", params, co)
			if err != nil {
				return nil, err
			}
			// later chunks must land on the asset the first chunk created
			if id := resp.GetString("public_id"); id != "" {
				params["public_id"] = id
			}
			offset += int64(n)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return nil, readErr
		}
	}
	if resp == nil {
		return nil, api.NewError(api.BadRequest, "empty file")
	}
	return resp, nil
}

func uploadResourceType(p *UploadParams) string {
	if p != nil && p.ResourceType != "" {
		return p.ResourceType
	}
	return api.Image.String()
}

// sourceSize reports the total byte size when the source supports it,
// or -1 for pure streams
func sourceSize(file interface{}, in io.Reader) int64 {
	switch f := file.(type) {
	case []byte:
		return int64(len(f))
	case string:
		if fi, err := os.Stat(f); err == nil {
			return fi.Size()
		}
		return -1
	}
	if seeker, ok := in.(io.Seeker); ok {
		pos, err := seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		end, err := seeker.Seek(0, io.SeekEnd)
		if err != nil {
			return -1
		}
		if _, err := seeker.Seek(pos, io.SeekStart); err != nil {
			return -1
		}
		return end - pos
	}
	return -1
}

// probeBreakpoints drops the responsive_breakpoints request when the
// cache already has the widths for this rendition
func (u *API) probeBreakpoints(p *UploadParams, params map[string]interface{}) (cache.Key, bool) {
	if u.Breakpoints == nil || p == nil || p.ResponsiveBreakpoints == nil {
		return cache.Key{}, false
	}
	if p.PublicID == "" {
		warnf("responsive breakpoint caching needs a public_id, probing the server")
		return cache.Key{}, false
	}
	trans, err := transformation.Encode(p.Transformation)
	if err != nil {
		return cache.Key{}, false
	}
	key := cache.Key{
		PublicID:       p.PublicID,
		Type:           p.Type,
		ResourceType:   uploadResourceType(p),
		Transformation: trans,
		Format:         p.Format,
	}
	if _, ok := u.Breakpoints.Get(key); ok {
		delete(params, "responsive_breakpoints")
		return key, true
	}
	return key, false
}

// storeBreakpoints caches the widths the server computed for later
// renders of the same asset
func (u *API) storeBreakpoints(key cache.Key, resp *api.Response) {
	if u.Breakpoints == nil || key.PublicID == "" || resp == nil {
		return
	}
	sets, ok := resp.Get("responsive_breakpoints").([]interface{})
	if !ok {
		return
	}
	for _, set := range sets {
		m, ok := set.(map[string]interface{})
		if !ok {
			continue
		}
		points, ok := m["breakpoints"].([]interface{})
		if !ok {
			continue
		}
		widths := make([]int, 0, len(points))
		for _, point := range points {
			pm, ok := point.(map[string]interface{})
			if !ok {
				continue
			}
			if w, ok := pm["width"].(float64); ok {
				widths = append(widths, int(w))
			}
		}
		if len(widths) > 0 {
			u.Breakpoints.Set(key, widths)
		}
	}
}
