package fingerprint

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/gowebpki/jcs"
	"golang.org/x/crypto/blake2b"
)

var machineIDPaths = []string{"/etc/machine-id", "/var/lib/dbus/machine-id"}

// Device derives a stable identifier for this install from host properties.
// The components are canonicalized (RFC 8785) before hashing so field order
// never changes the result.
type Device struct {
	// Salt separates identifiers of different survey deployments on one host.
	Salt string

	readFile func(name string) ([]byte, error)
	hostname func() (string, error)
	goos     string
	goarch   string
}

func NewDevice(salt string) *Device {
	return &Device{
		Salt:     salt,
		readFile: os.ReadFile,
		hostname: os.Hostname,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}
}

type components struct {
	MachineID string `json:"machineId,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	Salt      string `json:"salt,omitempty"`
}

func (d *Device) Fingerprint(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c := components{OS: d.goos, Arch: d.goarch, Salt: d.Salt}
	for _, p := range machineIDPaths {
		if b, err := d.readFile(p); err == nil {
			if id := strings.TrimSpace(string(b)); id != "" {
				c.MachineID = id
				break
			}
		}
	}
	if h, err := d.hostname(); err == nil {
		c.Hostname = strings.TrimSpace(h)
	}
	if c.MachineID == "" && c.Hostname == "" {
		return "", ErrUnavailable
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("fingerprint: encode components: %w", err)
	}
	canon, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("fingerprint: canonicalize: %w", err)
	}
	sum := blake2b.Sum256(canon)
	return hex.EncodeToString(sum[:]), nil
}
