// Package endpoint builds the backend URLs the UI dispatches to.
package endpoint

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/fetchdemo/internal/user"
)

// Set derives request URLs from the configured base address and API path.
type Set struct {
	base string
	api  string
}

// New returns a Set. Trailing slashes on base and surrounding slashes on
// apiPath are ignored.
func New(base, apiPath string) Set {
	return Set{
		base: strings.TrimRight(base, "/"),
		api:  strings.Trim(apiPath, "/"),
	}
}

// Base returns the normalised base address.
func (s Set) Base() string { return s.base }

func (s Set) Hello() string {
	return s.base + "/hello"
}

func (s Set) HelloDelay(seconds uint64) string {
	return s.base + "/hello/delay/" + strconv.FormatUint(seconds, 10)
}

func (s Set) HelloName(name string) string {
	return s.base + "/hello/" + url.PathEscape(name)
}

func (s Set) Users() string {
	return s.base + "/" + s.api + "/user"
}

func (s Set) User(id user.ID) string {
	return s.Users() + "/" + id.String()
}
