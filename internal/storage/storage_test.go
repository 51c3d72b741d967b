package storage

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"orggov-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfBytes(size int) []byte {
	head := []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")
	if size < len(head) {
		size = len(head)
	}
	buf := make([]byte, size)
	copy(buf, head)
	return buf
}

func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range []string{"[Content_Types].xml", "word/document.xml"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("<xml/>"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocumentValidator(t *testing.T) {
	v := NewFileValidator(DocumentRules)

	t.Run("Valid PDF", func(t *testing.T) {
		res := v.Validate(domain.Upload{Filename: "proposal.pdf", Data: pdfBytes(1024)})
		assert.True(t, res.OK())
		assert.NoError(t, v.Check(domain.Upload{Filename: "proposal.pdf", Data: pdfBytes(1024)}))
	})

	t.Run("Valid DOCX", func(t *testing.T) {
		res := v.Validate(domain.Upload{Filename: "Budget.DOCX", Data: docxBytes(t)})
		assert.True(t, res.ExtensionOK)
		assert.True(t, res.MimeOK)
	})

	t.Run("Oversized PDF", func(t *testing.T) {
		file := domain.Upload{Filename: "big.pdf", Data: pdfBytes(12 << 20)}
		res := v.Validate(file)
		assert.True(t, res.ExtensionOK)
		assert.True(t, res.MimeOK)
		assert.False(t, res.SizeOK)

		err := v.Check(file)
		assert.True(t, domain.IsKind(err, domain.KindValidation))
		assert.Contains(t, err.Error(), "10 MB")
	})

	t.Run("Renamed executable", func(t *testing.T) {
		res := v.Validate(domain.Upload{Filename: "evil.pdf", Data: []byte("MZ\x90\x00\x03\x00\x00\x00")})
		assert.True(t, res.ExtensionOK)
		assert.False(t, res.MimeOK)
	})

	t.Run("Content must match extension", func(t *testing.T) {
		var archive bytes.Buffer
		zw := zip.NewWriter(&archive)
		w, err := zw.Create("payload.exe")
		require.NoError(t, err)
		_, err = w.Write([]byte("MZ\x90\x00"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())
		ole := append([]byte("\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1"), make([]byte, 1024)...)

		cases := []struct {
			name string
			file domain.Upload
		}{
			{"zip named pdf", domain.Upload{Filename: "budget.pdf", Data: archive.Bytes()}},
			{"zip named doc", domain.Upload{Filename: "budget.doc", Data: archive.Bytes()}},
			{"docx named pdf", domain.Upload{Filename: "budget.pdf", Data: docxBytes(t)}},
			{"pdf named docx", domain.Upload{Filename: "budget.docx", Data: pdfBytes(256)}},
			{"ole named pdf", domain.Upload{Filename: "budget.pdf", Data: ole}},
		}
		for _, tc := range cases {
			res := v.Validate(tc.file)
			assert.True(t, res.ExtensionOK, tc.name)
			assert.False(t, res.MimeOK, tc.name)

			err := v.Check(tc.file)
			require.Error(t, err, tc.name)
			assert.Contains(t, err.Error(), "does not match", tc.name)
		}
	})

	t.Run("Wrong extension", func(t *testing.T) {
		res := v.Validate(domain.Upload{Filename: "notes.txt", Data: pdfBytes(100)})
		assert.False(t, res.ExtensionOK)
	})

	t.Run("Empty file", func(t *testing.T) {
		err := v.Check(domain.Upload{Filename: "empty.pdf"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "file is empty")
	})
}

func TestPictureValidator(t *testing.T) {
	v := NewFileValidator(PictureRules)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

	assert.True(t, v.Validate(domain.Upload{Filename: "me.png", Data: png}).OK())
	assert.False(t, v.Validate(domain.Upload{Filename: "me.pdf", Data: pdfBytes(64)}).OK())
	assert.False(t, v.Validate(domain.Upload{Filename: "me.jpg", Data: png}).MimeOK)
	assert.Equal(t, []string{".jpeg", ".jpg", ".png"}, PictureRules.Extensions())

	big := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 6<<20)...)
	assert.False(t, v.Validate(domain.Upload{Filename: "me.png", Data: big}).SizeOK)
}

func TestLocalStorageService(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorageService(t.TempDir())
	require.NoError(t, err)

	key, err := s.SaveFile(ctx, CategoryDocuments, "Proposal.PDF", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "documents/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	exists, size, err := s.FileExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(5), size)

	rc, err := s.ReadFile(key)
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(data))

	require.NoError(t, s.DeleteFile(ctx, key))
	exists, _, err = s.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.DeleteFile(ctx, key), "deleting a missing key is not an error")

	_, _, err = s.FileExists(ctx, "../etc/passwd")
	assert.Error(t, err)
}
