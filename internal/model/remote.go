package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/features"
	"github.com/wonny/salescast/pkg/httputil"
)

// RemoteGateway 외부 스코어링 서비스에 예측을 위임하는 ModelGateway
type RemoteGateway struct {
	client  *httputil.Client
	baseURL string
	mode    contracts.ModelMode
	vocab   []string
}

type predictRequest struct {
	SchemaVersion string      `json:"schemaVersion"`
	Mode          string      `json:"mode"`
	Columns       []string    `json:"columns"`
	Products      []string    `json:"products"`
	Rows          [][]float64 `json:"rows"`
}

type predictResponse struct {
	SchemaVersion string    `json:"schemaVersion"`
	Predictions   []float64 `json:"predictions"`
}

// modelInfo is served by GET {base}/models/{mode}
type modelInfo struct {
	SchemaVersion string    `json:"schemaVersion"`
	Columns       []string  `json:"columns"`
	Products      []string  `json:"products"`
	Meta          *Metadata `json:"meta"`
}

// Predict posts the schema-ordered feature matrix and returns one value per row
func (g *RemoteGateway) Predict(ctx context.Context, rows []contracts.FeatureRow) ([]float64, error) {
	if len(rows) == 0 {
		return []float64{}, nil
	}

	table := features.NewTable(rows, nil)
	req := predictRequest{
		SchemaVersion: contracts.SchemaVersion,
		Mode:          string(g.mode),
		Columns:       table.Columns,
		Products:      table.Products(),
		Rows:          table.Matrix(),
	}

	var resp predictResponse
	if err := g.client.DoJSON(ctx, http.MethodPost, g.baseURL+"/predict", req, &resp); err != nil {
		return nil, fmt.Errorf("remote predict: %w", err)
	}
	if resp.SchemaVersion != "" && resp.SchemaVersion != contracts.SchemaVersion {
		return nil, fmt.Errorf("%w: remote schema %q, serving %q", contracts.ErrSchemaMismatch, resp.SchemaVersion, contracts.SchemaVersion)
	}
	if len(resp.Predictions) != len(rows) {
		return nil, fmt.Errorf("%w: remote returned %d predictions for %d rows", contracts.ErrSchemaMismatch, len(resp.Predictions), len(rows))
	}
	return resp.Predictions, nil
}

// KnownProductVocabulary returns the products the remote model reported at load time
func (g *RemoteGateway) KnownProductVocabulary() ([]string, bool) {
	if len(g.vocab) == 0 {
		return nil, false
	}
	return g.vocab, true
}

// RemoteLoader probes the scoring service for a mode's model
type RemoteLoader struct {
	client  *httputil.Client
	baseURL string
}

// NewRemoteLoader creates a loader for the service at baseURL
func NewRemoteLoader(client *httputil.Client, baseURL string) *RemoteLoader {
	return &RemoteLoader{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

// Load fetches model info; 404 means the mode has no trained model
func (l *RemoteLoader) Load(ctx context.Context, mode contracts.ModelMode) (*Handle, error) {
	endpoint := l.baseURL + "/models/" + url.PathEscape(string(mode))

	var info modelInfo
	if err := l.client.DoJSON(ctx, http.MethodGet, endpoint, nil, &info); err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: remote has no %s model", contracts.ErrModelUnavailable, mode)
		}
		return nil, fmt.Errorf("remote model info: %w", err)
	}

	if info.SchemaVersion != contracts.SchemaVersion {
		return nil, fmt.Errorf("%w: remote schema %q, serving %q", contracts.ErrSchemaMismatch, info.SchemaVersion, contracts.SchemaVersion)
	}
	if len(info.Columns) > 0 {
		if err := features.ValidateColumns(info.Columns); err != nil {
			return nil, err
		}
	}

	return &Handle{
		Mode: mode,
		Gateway: &RemoteGateway{
			client:  l.client,
			baseURL: l.baseURL,
			mode:    mode,
			vocab:   info.Products,
		},
		Meta: info.Meta,
		Path: endpoint,
	}, nil
}
