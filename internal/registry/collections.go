// ABOUTME: Loads user-defined tool collections from a TOML file.
// ABOUTME: The [collections] table maps collection names to tool name lists.

package registry

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type collectionsFile struct {
	Collections map[string][]string `toml:"collections"`
}

// LoadCollections reads user collections from a TOML file of the form:
//
//	[collections]
//	research = ["web_search", "web_crawler", "planning"]
//
// The result feeds WithCollections; names clashing with the fixed
// collections are rejected at registry construction, not here.
func LoadCollections(path string) (map[string][]string, error) {
	var f collectionsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parsing collections file: %w", err)
	}
	return f.Collections, nil
}
