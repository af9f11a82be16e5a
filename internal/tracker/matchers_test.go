package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

func TestMatchLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantKind model.EventKind
		wantName string
		wantOK   bool
	}{
		{
			name:     "vanilla join",
			line:     "[12:34:56] [Server thread/INFO]: Steve joined the game",
			wantKind: model.EventPlayerJoined,
			wantName: "Steve",
			wantOK:   true,
		},
		{
			name:     "vanilla leave",
			line:     "[12:35:10] [Server thread/INFO]: Steve left the game",
			wantKind: model.EventPlayerLeft,
			wantName: "Steve",
			wantOK:   true,
		},
		{
			name:     "name with spaces",
			line:     "[12:34:56] [Server thread/INFO]: Herr Doktor joined the game",
			wantKind: model.EventPlayerJoined,
			wantName: "Herr Doktor",
			wantOK:   true,
		},
		{
			name:     "plugin format falls through to permissive join",
			line:     "INFO plugin: joined the game: Alex",
			wantKind: model.EventPlayerJoined,
			wantName: "Alex",
			wantOK:   true,
		},
		{
			name:     "permissive join without a name",
			line:     "something joined the game",
			wantKind: model.EventPlayerJoined,
			wantName: "unknown",
			wantOK:   true,
		},
		{
			name:     "permissive leave without a name",
			line:     "someone left the game",
			wantKind: model.EventPlayerLeft,
			wantName: "unknown",
			wantOK:   true,
		},
		{
			name:   "unrelated line",
			line:   "[12:00:00] [Server thread/INFO]: Preparing spawn area",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, name, ok := matchLine(defaultMatchers, tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKind, kind)
				assert.Equal(t, tt.wantName, name)
			}
		})
	}
}

func TestMatchLine_StrictWinsOverPermissive(t *testing.T) {
	// Строгий шаблон захватывает имя до фразы, снисходительный - после;
	// приоритет у строгого
	line := "[12:34:56] [Server thread/INFO]: Steve joined the game"
	_, name, ok := matchLine(defaultMatchers, line)
	assert.True(t, ok)
	assert.Equal(t, "Steve", name)
}
