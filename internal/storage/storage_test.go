package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type snapshotPatient struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Age      int    `json:"age"`
}

type StoreSuite struct {
	suite.Suite
	backend *MemoryBackend
	store   *Store
	ctx     context.Context
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupTest() {
	s.backend = NewMemoryBackend()
	var err error
	s.store, err = New(s.backend, NewObfuscatingCodec())
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *StoreSuite) TestNew() {
	s.Run("nil backend returns error", func() {
		_, err := New(nil, NewObfuscatingCodec())
		s.Error(err)
	})

	s.Run("nil codec returns error", func() {
		_, err := New(s.backend, nil)
		s.Error(err)
	})
}

func (s *StoreSuite) TestSaveLoad() {
	s.Run("load of never-written key leaves default", func() {
		patients := []snapshotPatient{}
		err := s.store.Load(s.ctx, KeyPatients, &patients)
		s.NoError(err)
		s.Empty(patients)
	})

	s.Run("empty collection round-trips empty", func() {
		s.Require().NoError(s.store.Save(s.ctx, KeyPatients, []snapshotPatient{}))

		patients := []snapshotPatient{}
		s.Require().NoError(s.store.Load(s.ctx, KeyPatients, &patients))
		s.Empty(patients)
	})

	s.Run("populated collection round-trips deep-equal", func() {
		want := []snapshotPatient{
			{ID: "p-1", FullName: "Amina Nkosi", Age: 34},
			{ID: "p-2", FullName: "Carlos Mutola", Age: 61},
		}
		s.Require().NoError(s.store.Save(s.ctx, KeyPatients, want))

		var got []snapshotPatient
		s.Require().NoError(s.store.Load(s.ctx, KeyPatients, &got))
		s.Equal(want, got)
	})

	s.Run("scalar pointer key round-trips", func() {
		s.Require().NoError(s.store.Save(s.ctx, KeyActivePatient, "p-2"))

		var active string
		s.Require().NoError(s.store.Load(s.ctx, KeyActivePatient, &active))
		s.Equal("p-2", active)
	})

	s.Run("keys load independently", func() {
		s.Require().NoError(s.store.Save(s.ctx, KeyLanguage, "pt"))
		s.Require().NoError(s.backend.Put(s.ctx, KeyPatients, []byte("not base64 at all!!")))

		var lang string
		s.Require().NoError(s.store.Load(s.ctx, KeyLanguage, &lang))
		s.Equal("pt", lang)

		patients := []snapshotPatient{}
		s.Require().NoError(s.store.Load(s.ctx, KeyPatients, &patients))
		s.Empty(patients)
	})
}

func (s *StoreSuite) TestCorruptBlobDegradesToDefault() {
	s.Run("undecodable blob", func() {
		s.Require().NoError(s.backend.Put(s.ctx, KeyPatients, []byte("%%%%")))

		patients := []snapshotPatient{}
		err := s.store.Load(s.ctx, KeyPatients, &patients)
		s.NoError(err)
		s.Empty(patients)
	})

	s.Run("foreign-shaped blob leaves dst untouched", func() {
		// Valid base64 of valid JSON, but the wrong shape for a list.
		s.Require().NoError(s.store.Save(s.ctx, KeyPatients, map[string]int{"x": 1}))

		patients := []snapshotPatient{{ID: "seed"}}
		err := s.store.Load(s.ctx, KeyPatients, &patients)
		s.NoError(err)
		s.Equal([]snapshotPatient{{ID: "seed"}}, patients)
	})
}

type CodecSuite struct {
	suite.Suite
}

func TestCodecSuite(t *testing.T) {
	suite.Run(t, new(CodecSuite))
}

func (s *CodecSuite) TestObfuscatingCodec() {
	codec := NewObfuscatingCodec()

	s.Run("round-trips", func() {
		blob, err := codec.Encode([]byte(`{"id":"p-1"}`))
		s.Require().NoError(err)
		raw, err := codec.Decode(blob)
		s.Require().NoError(err)
		s.Equal(`{"id":"p-1"}`, string(raw))
	})

	s.Run("garbage fails decode", func() {
		_, err := codec.Decode([]byte("!!not-base64!!"))
		s.Error(err)
	})
}

func (s *CodecSuite) TestAEADCodec() {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	codec, err := NewAEADCodec(key)
	s.Require().NoError(err)

	s.Run("short key rejected", func() {
		_, err := NewAEADCodec([]byte("too short"))
		s.Error(err)
	})

	s.Run("round-trips", func() {
		blob, err := codec.Encode([]byte("clinical data"))
		s.Require().NoError(err)
		raw, err := codec.Decode(blob)
		s.Require().NoError(err)
		s.Equal("clinical data", string(raw))
	})

	s.Run("ciphertexts are nonce-randomized", func() {
		a, err := codec.Encode([]byte("same input"))
		s.Require().NoError(err)
		b, err := codec.Encode([]byte("same input"))
		s.Require().NoError(err)
		s.NotEqual(a, b)
	})

	s.Run("tampered blob fails to open", func() {
		blob, err := codec.Encode([]byte("clinical data"))
		s.Require().NoError(err)
		blob[len(blob)-1] ^= 0xFF
		_, err = codec.Decode(blob)
		s.Error(err)
	})

	s.Run("truncated blob fails to open", func() {
		_, err := codec.Decode([]byte{0x01, 0x02})
		s.Error(err)
	})
}

type FileBackendSuite struct {
	suite.Suite
	dir     string
	backend *FileBackend
	ctx     context.Context
}

func TestFileBackendSuite(t *testing.T) {
	suite.Run(t, new(FileBackendSuite))
}

func (s *FileBackendSuite) SetupTest() {
	s.dir = s.T().TempDir()
	var err error
	s.backend, err = NewFileBackend(s.dir)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *FileBackendSuite) TestPutGet() {
	s.Run("missing key reports not found", func() {
		_, err := s.backend.Get(s.ctx, "missing")
		s.Error(err)
	})

	s.Run("put then get returns blob", func() {
		s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob-1")))
		blob, err := s.backend.Get(s.ctx, "patients")
		s.Require().NoError(err)
		s.Equal([]byte("blob-1"), blob)
	})

	s.Run("put replaces prior snapshot", func() {
		s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob-1")))
		s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob-2")))
		blob, err := s.backend.Get(s.ctx, "patients")
		s.Require().NoError(err)
		s.Equal([]byte("blob-2"), blob)
	})

	s.Run("no temp files linger after writes", func() {
		s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob")))
		matches, err := filepath.Glob(filepath.Join(s.dir, "*.tmp"))
		s.Require().NoError(err)
		s.Empty(matches)
	})

	s.Run("survives reopening the directory", func() {
		s.Require().NoError(s.backend.Put(s.ctx, "language", []byte("pt")))
		reopened, err := NewFileBackend(s.dir)
		s.Require().NoError(err)
		blob, err := reopened.Get(s.ctx, "language")
		s.Require().NoError(err)
		s.Equal([]byte("pt"), blob)
	})
}

func (s *FileBackendSuite) TestDelete() {
	s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob")))
	s.Require().NoError(s.backend.Delete(s.ctx, "patients"))
	_, err := s.backend.Get(s.ctx, "patients")
	s.Error(err)

	s.Run("deleting a missing key is not an error", func() {
		s.NoError(s.backend.Delete(s.ctx, "never-written"))
	})
}

func (s *FileBackendSuite) TestPermissions() {
	s.Require().NoError(s.backend.Put(s.ctx, "patients", []byte("blob")))
	info, err := os.Stat(s.dir)
	s.Require().NoError(err)
	s.True(info.IsDir())
}
