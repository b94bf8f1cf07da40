package figma

import (
	"fmt"
	"net/url"
	"strings"
)

// DesignRef identifies a file and, optionally, a node inside it.
type DesignRef struct {
	FileKey string
	NodeID  string
}

// ParseURL extracts the file key and node id from a Figma share link such as
// https://www.figma.com/design/<key>/<title>?node-id=12-34. Node ids use
// dashes in links and colons in the API.
func ParseURL(raw string) (DesignRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return DesignRef{}, fmt.Errorf("invalid figma url: %w", err)
	}
	if !strings.HasSuffix(u.Hostname(), "figma.com") {
		return DesignRef{}, fmt.Errorf("invalid figma url: host %q is not figma.com", u.Hostname())
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	var ref DesignRef
	for i := 0; i+1 < len(segments); i++ {
		switch segments[i] {
		case "file", "design", "proto", "board":
			ref.FileKey = segments[i+1]
		}
		if ref.FileKey != "" {
			break
		}
	}
	if ref.FileKey == "" {
		return DesignRef{}, fmt.Errorf("invalid figma url: no file key in %q", u.Path)
	}

	if nodeID := u.Query().Get("node-id"); nodeID != "" {
		ref.NodeID = strings.ReplaceAll(nodeID, "-", ":")
	}
	return ref, nil
}
