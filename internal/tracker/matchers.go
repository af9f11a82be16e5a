package tracker

import (
	"regexp"
	"strings"

	"github.com/kazakovdmitriy/go-gameserver-agent/internal/model"
)

// lineMatcher - шаблон строки лога и вид события, который она означает.
type lineMatcher struct {
	kind model.EventKind
	rx   *regexp.Regexp
}

// Матчеры пробуются по порядку, выигрывает первый совпавший: сперва
// строгие форматы ванильного сервера, затем снисходительные запасные
// варианты для плагинов с другим форматом строк.
//
// Типичные строки (Forge 1.12.2):
//
//	[HH:MM:SS] [Server thread/INFO]: Steve joined the game
//	[HH:MM:SS] [Server thread/INFO]: Steve left the game
var defaultMatchers = []lineMatcher{
	{model.EventPlayerJoined, regexp.MustCompile(`\] \[Server thread/INFO\]: (.+?) joined the game`)},
	{model.EventPlayerLeft, regexp.MustCompile(`\] \[Server thread/INFO\]: (.+?) left the game`)},
	{model.EventPlayerJoined, regexp.MustCompile(`joined the game:?\s*(.+)?`)},
	{model.EventPlayerLeft, regexp.MustCompile(`left the game:?\s*(.+)?`)},
}

// matchLine возвращает вид события и имя игрока для строки лога.
// Отсутствующее или пустое имя заменяется на "unknown".
func matchLine(matchers []lineMatcher, line string) (model.EventKind, string, bool) {
	for _, m := range matchers {
		groups := m.rx.FindStringSubmatch(line)
		if groups == nil {
			continue
		}
		name := "unknown"
		if len(groups) > 1 {
			if trimmed := strings.TrimSpace(groups[1]); trimmed != "" {
				name = trimmed
			}
		}
		return m.kind, name, true
	}
	return "", "", false
}
