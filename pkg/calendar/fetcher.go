package calendar

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/borgmon/timeblock/pkg/models"
)

const fetchTimeout = 30 * time.Second

// maxFeedSize caps how much of a remote feed is read
const maxFeedSize = 10 << 20

// Fetch downloads a published iCalendar feed and imports it
func Fetch(ctx context.Context, url string, opts ImportOptions) ([]models.TimeBlock, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP request failed: %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := validateICalFormat(body); err != nil {
		return nil, err
	}
	return Import(bytes.NewReader(body), opts)
}

func validateICalFormat(body []byte) error {
	trimmed := strings.TrimSpace(string(body))
	upper := strings.ToUpper(trimmed)
	if strings.HasPrefix(upper, "<!DOCTYPE") || strings.HasPrefix(upper, "<HTML") {
		return fmt.Errorf("received HTML instead of iCalendar data - check if URL requires authentication")
	}

	first := trimmed
	if sc := bufio.NewScanner(strings.NewReader(trimmed)); sc.Scan() {
		first = strings.TrimSpace(sc.Text())
	}
	if first != "BEGIN:VCALENDAR" {
		if len(first) > 100 {
			first = first[:100]
		}
		return fmt.Errorf("invalid iCalendar format - expected BEGIN:VCALENDAR, got: %s", first)
	}
	return nil
}
