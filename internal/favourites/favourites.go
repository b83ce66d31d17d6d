package favourites

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/kirsle/configdir"
	"github.com/parkbrowse/parkbrowse/internal/serverlist"
	"github.com/parkbrowse/parkbrowse/pkg/util"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// FileName is the fixed name of the favourites file inside the per-user
// config root.
const FileName = "servers.cfg"

const configRoot = "parkbrowse"

// Store reads and writes the favourites file. The on-disk layout is a
// little-endian uint32 count followed by that many records, each record being
// three length-prefixed UTF-8 strings: address, name, description. There is
// no version tag; the layout must not change.
//
// Store does not guard against concurrent use; callers must not overlap
// Read and Write calls.
type Store struct {
	log  *zap.Logger
	path string
}

// NewStore creates a store over the favourites file at path.
func NewStore(logger *zap.Logger, path string) *Store {
	return &Store{log: logger.Named("favourites"), path: path}
}

// DefaultPath returns the per-user favourites file path, creating the config
// directory if required.
func DefaultPath() (string, error) {
	configPath := configdir.LocalConfig(configRoot)
	if errMakePath := configdir.MakePath(configPath); errMakePath != nil {
		return "", errors.Wrap(errMakePath, "Failed to create config directory")
	}

	return filepath.Join(configPath, FileName), nil
}

// Read loads the persisted favourites. A missing file yields an empty set.
// Read and decode failures are logged and also yield an empty set; loading
// favourites never fails the caller. Loaded entries carry no live status:
// only address, name and description are persisted, everything else takes its
// documented default and the favourite flag is set.
func (s *Store) Read() []serverlist.Entry {
	if !util.Exists(s.path) {
		return nil
	}

	body, errRead := os.ReadFile(s.path)
	if errRead != nil {
		s.log.Error("Unable to read favourites file", zap.String("path", s.path), zap.Error(errRead))

		return nil
	}

	entries, errDecode := decode(body)
	if errDecode != nil {
		s.log.Error("Unable to parse favourites file", zap.String("path", s.path), zap.Error(errDecode))

		return nil
	}

	return entries
}

// Write replaces the favourites file with the given entries, in order. The
// file is replaced atomically via a temp file and rename so a failed write
// never truncates the previous contents.
func (s *Store) Write(entries []serverlist.Entry) error {
	body := encode(entries)

	tmpFile, errTmp := os.CreateTemp(filepath.Dir(s.path), FileName+".*")
	if errTmp != nil {
		s.log.Error("Unable to create favourites temp file", zap.Error(errTmp))

		return errors.Wrap(errTmp, "Failed to create temp file")
	}

	if _, errWrite := tmpFile.Write(body); errWrite != nil {
		util.IgnoreClose(tmpFile)
		_ = os.Remove(tmpFile.Name())
		s.log.Error("Unable to write favourites file", zap.Error(errWrite))

		return errors.Wrap(errWrite, "Failed to write favourites")
	}

	if errClose := tmpFile.Close(); errClose != nil {
		_ = os.Remove(tmpFile.Name())

		return errors.Wrap(errClose, "Failed to close favourites temp file")
	}

	if errRename := os.Rename(tmpFile.Name(), s.path); errRename != nil {
		_ = os.Remove(tmpFile.Name())
		s.log.Error("Unable to replace favourites file", zap.Error(errRename))

		return errors.Wrap(errRename, "Failed to replace favourites file")
	}

	s.log.Debug("Wrote favourites", zap.Int("count", len(entries)), zap.String("path", s.path))

	return nil
}

func encode(entries []serverlist.Entry) []byte {
	var buf bytes.Buffer

	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(entries)))

	for _, entry := range entries {
		writeString(&buf, entry.Address)
		writeString(&buf, entry.Name)
		writeString(&buf, entry.Description)
	}

	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, value string) {
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(value)))
	buf.WriteString(value)
}

func decode(body []byte) ([]serverlist.Entry, error) {
	reader := bytes.NewReader(body)

	var count uint32
	if errCount := binary.Read(reader, binary.LittleEndian, &count); errCount != nil {
		return nil, errors.Wrap(errCount, "Failed to read favourites count")
	}

	var entries []serverlist.Entry

	for i := uint32(0); i < count; i++ {
		address, errAddress := readString(reader)
		if errAddress != nil {
			return nil, errors.Wrap(errAddress, "Failed to read address")
		}

		name, errName := readString(reader)
		if errName != nil {
			return nil, errors.Wrap(errName, "Failed to read name")
		}

		description, errDescription := readString(reader)
		if errDescription != nil {
			return nil, errors.Wrap(errDescription, "Failed to read description")
		}

		entries = append(entries, serverlist.Entry{
			Address:     address,
			Name:        name,
			Description: description,
			Favourite:   true,
		})
	}

	return entries, nil
}

func readString(reader *bytes.Reader) (string, error) {
	var size uint32
	if errSize := binary.Read(reader, binary.LittleEndian, &size); errSize != nil {
		return "", errSize
	}

	if int(size) > reader.Len() {
		return "", errors.Errorf("string length %d exceeds remaining %d bytes", size, reader.Len())
	}

	raw := make([]byte, size)
	if _, errRead := io.ReadFull(reader, raw); errRead != nil {
		return "", errRead
	}

	return string(raw), nil
}
