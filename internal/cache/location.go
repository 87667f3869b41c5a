package cache

import (
	"time"

	ierr "github.com/flexprice/invoicer/internal/errors"
	goCache "github.com/patrickmn/go-cache"
)

// LoadLocation resolves an IANA timezone name, memoizing the result.
// An empty name resolves to UTC. Unknown names are configuration errors.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "UTC" {
		return time.UTC, nil
	}

	c := shared()
	key := GenerateKey(PrefixLocation, name)
	if cached, ok := c.Get(key); ok {
		if loc, ok := cached.(*time.Location); ok {
			return loc, nil
		}
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Timezone %q is not a valid IANA timezone", name).
			WithReportableDetails(map[string]any{
				"timezone": name,
			}).
			Mark(ierr.ErrConfiguration)
	}

	c.Set(key, loc, goCache.NoExpiration)
	return loc, nil
}
