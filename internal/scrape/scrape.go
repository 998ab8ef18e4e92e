// Package scrape reads Prometheus text expositions from HTTP endpoints.
package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/neox5/scrapebox/internal/version"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/prometheus/common/model"
)

const acceptContentType = "text/plain;version=0.0.4;q=1,*/*;q=0.1"

// DefaultTimeout bounds a single scrape.
const DefaultTimeout = 10 * time.Second

// Client scrapes exposition endpoints.
type Client struct {
	http *resty.Client
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", acceptContentType).
			SetHeader("User-Agent", "scrapebox/"+version.Version),
	}
}

// Scrape fetches url and parses the response as the Prometheus text format.
func (c *Client) Scrape(ctx context.Context, url string) (map[string]*dto.MetricFamily, error) {
	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("cannot scrape %q: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%q returned error status %s", url, resp.Status())
	}

	return ParseText(bytes.NewReader(resp.Body()))
}

// ParseText parses a Prometheus text exposition.
func ParseText(r io.Reader) (map[string]*dto.MetricFamily, error) {
	parser := expfmt.NewTextParser(model.UTF8Validation)
	families, err := parser.TextToMetricFamilies(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse exposition: %w", err)
	}
	return families, nil
}

// Lines renders every sample as `name{key="value",...} value`, with families
// sorted by name. The label set is omitted for samples without labels.
func Lines(families map[string]*dto.MetricFamily) []string {
	var lines []string
	for _, name := range slices.Sorted(maps.Keys(families)) {
		family := families[name]
		for _, m := range family.GetMetric() {
			lines = append(lines, formatSample(name, m, family.GetType()))
		}
	}
	return lines
}

var labelValueEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, `"`, `\"`)

func formatSample(name string, m *dto.Metric, t dto.MetricType) string {
	var b strings.Builder
	b.WriteString(name)

	if pairs := m.GetLabel(); len(pairs) > 0 {
		b.WriteByte('{')
		for i, lp := range pairs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(lp.GetName())
			b.WriteString(`="`)
			labelValueEscaper.WriteString(&b, lp.GetValue())
			b.WriteByte('"')
		}
		b.WriteByte('}')
	}

	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(sampleValue(m, t), 'g', -1, 64))
	return b.String()
}

func sampleValue(m *dto.Metric, t dto.MetricType) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	default:
		return m.GetUntyped().GetValue()
	}
}
