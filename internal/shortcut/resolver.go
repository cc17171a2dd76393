// Package shortcut reads Windows Shell Link (.lnk) files and hands them to
// the platform shell.
package shortcut

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"winrecent/internal/recent"
)

// Ext is the shortcut artifact extension.
const Ext = ".lnk"

// maxLinkSize bounds how much of a file is read. Real shell links are a few
// kilobytes.
const maxLinkSize = 1 << 20

var (
	errNotShortcut = errors.New("not a shortcut file")
	errMalformed   = errors.New("malformed shell link")
)

var linkCLSID = [16]byte{
	0x01, 0x14, 0x02, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46,
}

const (
	headerSize = 0x4C

	flagHasLinkTargetIDList = 1 << 0
	flagHasLinkInfo         = 1 << 1
	flagHasName             = 1 << 2
	flagHasRelativePath     = 1 << 3
	flagIsUnicode           = 1 << 7

	linkInfoVolumeIDAndLocalBasePath = 1 << 0
	linkInfoCommonNetworkRelative    = 1 << 1
)

// Resolver resolves shell links by parsing the file directly.
type Resolver struct{}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the target path of the shortcut at artifactPath, or "" if
// the file is missing, is not a .lnk, or cannot be parsed.
func (r *Resolver) Resolve(artifactPath string) string {
	target, err := r.ResolveDetailed(artifactPath)
	if err != nil {
		return ""
	}
	return target
}

// ResolveDetailed is Resolve with the reason for an empty result.
func (r *Resolver) ResolveDetailed(artifactPath string) (string, error) {
	if !strings.EqualFold(filepath.Ext(artifactPath), Ext) {
		return "", errNotShortcut
	}

	f, err := os.Open(artifactPath)
	if err != nil {
		return "", fmt.Errorf("opening shortcut: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxLinkSize))
	if err != nil {
		return "", fmt.Errorf("reading shortcut: %w", err)
	}

	link, err := ParseLink(data)
	if err != nil {
		return "", err
	}

	target := link.Target()
	if target == "" && link.RelativePath != "" {
		target = filepath.Join(filepath.Dir(artifactPath), link.RelativePath)
	}
	if target == "" {
		return "", fmt.Errorf("%w: no target path", errMalformed)
	}
	return target, nil
}

// Link holds the path-related fields of a parsed shell link.
type Link struct {
	Flags            uint32
	LocalBasePath    string
	CommonPathSuffix string
	NetName          string
	Name             string
	RelativePath     string
}

// Target joins the LinkInfo path fields into an absolute target path.
func (l *Link) Target() string {
	switch {
	case l.LocalBasePath != "":
		return l.LocalBasePath + l.CommonPathSuffix
	case l.NetName != "":
		if l.CommonPathSuffix == "" {
			return l.NetName
		}
		return strings.TrimRight(l.NetName, `\`) + `\` + l.CommonPathSuffix
	}
	return ""
}

// ParseLink decodes the header, LinkInfo and leading StringData sections of
// a shell link.
func ParseLink(data []byte) (*Link, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file shorter than header", errMalformed)
	}
	if binary.LittleEndian.Uint32(data[0:4]) != headerSize {
		return nil, fmt.Errorf("%w: bad header size", errMalformed)
	}
	if !bytes.Equal(data[4:20], linkCLSID[:]) {
		return nil, fmt.Errorf("%w: bad class id", errMalformed)
	}

	link := &Link{Flags: binary.LittleEndian.Uint32(data[20:24])}
	off := headerSize

	if link.Flags&flagHasLinkTargetIDList != 0 {
		size, err := u16(data, off)
		if err != nil {
			return nil, err
		}
		off += 2 + int(size)
	}

	if link.Flags&flagHasLinkInfo != 0 {
		size, err := u32(data, off)
		if err != nil {
			return nil, err
		}
		end := off + int(size)
		if size < 0x1C || end > len(data) {
			return nil, fmt.Errorf("%w: bad LinkInfo size", errMalformed)
		}
		if err := parseLinkInfo(data[off:end], link); err != nil {
			return nil, err
		}
		off = end
	}

	unicode := link.Flags&flagIsUnicode != 0
	if link.Flags&flagHasName != 0 {
		s, next, err := stringData(data, off, unicode)
		if err != nil {
			return nil, err
		}
		link.Name, off = s, next
	}
	if link.Flags&flagHasRelativePath != 0 {
		s, _, err := stringData(data, off, unicode)
		if err != nil {
			return nil, err
		}
		link.RelativePath = s
	}

	return link, nil
}

func parseLinkInfo(info []byte, link *Link) error {
	headerLen, _ := u32(info, 4)
	flags, _ := u32(info, 8)
	localBaseOff, _ := u32(info, 16)
	networkOff, _ := u32(info, 20)
	suffixOff, _ := u32(info, 24)

	var err error
	if headerLen >= 0x24 {
		localBaseOffU, _ := u32(info, 28)
		suffixOffU, _ := u32(info, 32)
		if flags&linkInfoVolumeIDAndLocalBasePath != 0 && localBaseOffU != 0 {
			if link.LocalBasePath, err = utf16z(info, int(localBaseOffU)); err != nil {
				return err
			}
		}
		if suffixOffU != 0 {
			if link.CommonPathSuffix, err = utf16z(info, int(suffixOffU)); err != nil {
				return err
			}
		}
	}

	if link.LocalBasePath == "" && flags&linkInfoVolumeIDAndLocalBasePath != 0 {
		if link.LocalBasePath, err = ansiz(info, int(localBaseOff)); err != nil {
			return err
		}
	}
	if link.CommonPathSuffix == "" && suffixOff != 0 {
		if link.CommonPathSuffix, err = ansiz(info, int(suffixOff)); err != nil {
			return err
		}
	}

	if flags&linkInfoCommonNetworkRelative != 0 && networkOff != 0 {
		netNameOff, err := u32(info, int(networkOff)+8)
		if err != nil {
			return err
		}
		if link.NetName, err = ansiz(info, int(networkOff)+int(netNameOff)); err != nil {
			return err
		}
	}
	return nil
}

// stringData reads one counted StringData entry starting at off and returns
// it with the offset of the next entry.
func stringData(data []byte, off int, unicode bool) (string, int, error) {
	count, err := u16(data, off)
	if err != nil {
		return "", 0, err
	}
	off += 2
	n := int(count)
	if unicode {
		n *= 2
	}
	if off+n > len(data) {
		return "", 0, fmt.Errorf("%w: truncated string data", errMalformed)
	}
	raw := data[off : off+n]
	if unicode {
		return decodeUTF16(raw), off + n, nil
	}
	return decodeANSI(raw), off + n, nil
}

func u16(data []byte, off int) (uint16, error) {
	if off < 0 || off+2 > len(data) {
		return 0, fmt.Errorf("%w: truncated at %d", errMalformed, off)
	}
	return binary.LittleEndian.Uint16(data[off:]), nil
}

func u32(data []byte, off int) (uint32, error) {
	if off < 0 || off+4 > len(data) {
		return 0, fmt.Errorf("%w: truncated at %d", errMalformed, off)
	}
	return binary.LittleEndian.Uint32(data[off:]), nil
}

// ansiz reads a NUL-terminated single-byte string.
func ansiz(data []byte, off int) (string, error) {
	if off <= 0 || off >= len(data) {
		return "", fmt.Errorf("%w: string offset %d out of range", errMalformed, off)
	}
	end := bytes.IndexByte(data[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string", errMalformed)
	}
	return decodeANSI(data[off : off+end]), nil
}

// utf16z reads a NUL-terminated UTF-16LE string.
func utf16z(data []byte, off int) (string, error) {
	if off <= 0 || off >= len(data) {
		return "", fmt.Errorf("%w: string offset %d out of range", errMalformed, off)
	}
	for i := off; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			return decodeUTF16(data[off:i]), nil
		}
	}
	return "", fmt.Errorf("%w: unterminated unicode string", errMalformed)
}

func decodeUTF16(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	return string(utf16.Decode(u))
}

// decodeANSI maps bytes as Latin-1, which is exact for ASCII paths and
// close enough for Western code pages.
func decodeANSI(b []byte) string {
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

// Compile-time check that Resolver implements recent.Resolver
var _ recent.Resolver = (*Resolver)(nil)
