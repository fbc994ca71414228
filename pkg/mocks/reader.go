package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cpso-tools/cpso/internal/elfmeta"
)

type ReaderMock struct {
	mock.Mock
}

var _ elfmeta.Reader = (*ReaderMock)(nil)

func (m *ReaderMock) Read(ctx context.Context, path string) (*elfmeta.Metadata, error) {
	args := m.Called(ctx, path)
	metadata, _ := args.Get(0).(*elfmeta.Metadata)
	return metadata, args.Error(1)
}

// OnRead registers the metadata which is returned for path
func (m *ReaderMock) OnRead(path string, format elfmeta.Format, needed ...string) *mock.Call {
	return m.On("Read", mock.Anything, path).Return(&elfmeta.Metadata{
		Path:   path,
		Format: format,
		Needed: needed,
	}, nil)
}
