package app

import (
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/medfind/internal/backend"
	"github.com/kk-code-lab/medfind/internal/query"
	"github.com/kk-code-lab/medfind/internal/recent"
	statepkg "github.com/kk-code-lab/medfind/internal/state"
)

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	code, err := strconv.Atoi(os.Getenv("HELPER_PROCESS_EXIT"))
	if err != nil {
		code = 1
	}
	os.Exit(code)
}

func newActionTestApplication(t *testing.T) *Application {
	t.Helper()
	return &Application{
		state:   statepkg.NewAppState(query.ModeKeyword, query.CategorySymptom, 10),
		reducer: statepkg.NewStateReducer(statepkg.Services{}),
	}
}

type commandLog struct {
	mu       sync.Mutex
	recorded []string
}

func (c *commandLog) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.recorded...)
}

func withFakeCommandBuilder(t *testing.T, exitCode int, log *commandLog, fn func()) {
	t.Helper()
	orig := commandBuilder
	commandBuilder = func(name string, args ...string) *exec.Cmd {
		if log != nil {
			log.mu.Lock()
			log.recorded = append([]string{name}, args...)
			log.mu.Unlock()
		}
		return helperProcessCommand(exitCode)
	}
	defer func() {
		commandBuilder = orig
	}()
	fn()
}

func helperProcessCommand(exitCode int) *exec.Cmd {
	cmd := exec.Command(os.Args[0], "-test.run=TestHelperProcess")
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"HELPER_PROCESS_EXIT="+strconv.Itoa(exitCode),
	)
	return cmd
}

func TestCopyTargetPerView(t *testing.T) {
	state := statepkg.NewAppState(query.ModeKeyword, query.CategorySymptom, 10)

	_, ok := copyTarget(state)
	assert.False(t, ok, "nothing to copy on an empty home page")

	state.Recent = []recent.Entry{{Query: "두통", Mode: "keyword", Type: "symptom"}}
	state.RecentIndex = 0
	text, ok := copyTarget(state)
	assert.True(t, ok)
	assert.Equal(t, "두통", text)

	state.View = statepkg.ViewResults
	state.Results = []backend.Result{{DrugID: "1", DrugName: "타이레놀정"}, {DrugID: "2", DrugName: "게보린정"}}
	state.ResultIndex = 1
	text, _ = copyTarget(state)
	assert.Equal(t, "게보린정", text)

	state.View = statepkg.ViewDetail
	state.Detail = &backend.DrugDetail{DrugName: "판콜에이"}
	text, _ = copyTarget(state)
	assert.Equal(t, "판콜에이", text)
}

func TestHandleCopyPipesTextToClipboard(t *testing.T) {
	app := newActionTestApplication(t)
	app.state.Query = "타이레놀"
	app.clipboardAvail = true
	app.clipboardCmd = []string{"fake-clip", "--flag"}

	log := &commandLog{}
	withFakeCommandBuilder(t, 0, log, func() {
		require.True(t, app.handleCopy())
	})

	assert.Equal(t, []string{"fake-clip", "--flag"}, log.get())
	assert.NoError(t, app.state.LastError)
	assert.Equal(t, "copied 타이레놀", app.state.Notice)
}

func TestHandleCopyReportsFailure(t *testing.T) {
	app := newActionTestApplication(t)
	app.state.Query = "타이레놀"
	app.clipboardAvail = true
	app.clipboardCmd = []string{"fake-clip"}

	withFakeCommandBuilder(t, 7, nil, func() {
		app.handleCopy()
	})

	require.Error(t, app.state.LastError)
	assert.Contains(t, app.state.LastError.Error(), "fake-clip")
	assert.Empty(t, app.state.Notice)
}

func TestHandleCopyWithoutClipboard(t *testing.T) {
	app := newActionTestApplication(t)
	app.state.Query = "타이레놀"

	app.handleCopy()

	assert.ErrorIs(t, app.state.LastError, errNoClipboard)
}

func TestHandleOpenImage(t *testing.T) {
	app := newActionTestApplication(t)
	app.openerCmd = []string{"fake-open", "--new"}

	assert.False(t, app.handleOpenImage(), "only the detail page has an image")

	app.state.View = statepkg.ViewDetail
	app.state.Detail = &backend.DrugDetail{DrugName: "게보린정"}
	app.handleOpenImage()
	assert.ErrorIs(t, app.state.LastError, errNoImage)

	app.state.Detail.ImageURL = "javascript:alert(1)"
	app.handleOpenImage()
	require.Error(t, app.state.LastError)
	assert.True(t, strings.HasPrefix(app.state.LastError.Error(), "refusing to open"))

	app.state.Detail.ImageURL = "https://example.com/img/1.png"
	log := &commandLog{}
	withFakeCommandBuilder(t, 0, log, func() {
		app.handleOpenImage()
	})
	assert.NoError(t, app.state.LastError)
	assert.Equal(t, "opened image in browser", app.state.Notice)
	assert.Eventually(t, func() bool {
		got := log.get()
		return len(got) == 3 && got[2] == "https://example.com/img/1.png"
	}, time.Second, 10*time.Millisecond)
}
