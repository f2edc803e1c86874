package directory

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/Hu-Wenqiang/session-android-service/application"
	"github.com/Hu-Wenqiang/session-android-service/protocol"
	"github.com/Hu-Wenqiang/session-android-service/transport"
)

// A ProfileFetcher retrieves directory profile records, including
// their annotations, for a set of public keys.
type ProfileFetcher interface {
	GetUserProfiles(ctx context.Context, keys []protocol.PublicKey,
		server string, includeAnnotations bool) ([]application.ProfileRecord, error)
}

// A MappingWriter submits a partial profile update replacing the
// acting identity's devicemapping annotation. A nil value clears
// all links.
type MappingWriter interface {
	SubmitDeviceMapping(ctx context.Context, server string,
		value *application.DeviceMappingValue) error
}

// httpDirectory implements both collaborators over the transport
// client against the directory's user endpoints.
type httpDirectory struct {
	transport *transport.Client
}

// NewHTTPDirectory builds the production fetcher/writer pair.
func NewHTTPDirectory(tr *transport.Client) interface {
	ProfileFetcher
	MappingWriter
} {
	return &httpDirectory{transport: tr}
}

func (d *httpDirectory) GetUserProfiles(ctx context.Context,
	keys []protocol.PublicKey, server string,
	includeAnnotations bool) ([]application.ProfileRecord, error) {
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, "@"+string(k))
	}
	params := url.Values{"ids": {strings.Join(ids, ",")}}
	if includeAnnotations {
		params.Set("include_user_annotations", "1")
	}

	body, err := d.transport.Execute(ctx, http.MethodGet, server, "/users", params, nil)
	if err != nil {
		return nil, err
	}
	return application.UnmarshalProfileResponse(body)
}

func (d *httpDirectory) SubmitDeviceMapping(ctx context.Context,
	server string, value *application.DeviceMappingValue) error {
	body, err := application.MarshalDeviceMappingUpdate(value)
	if err != nil {
		return err
	}
	_, err = d.transport.Execute(ctx, http.MethodPatch, server, "/users/me", nil, body)
	return err
}
