package crabnode

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/runletapp/crabnode/interfaces"
	"github.com/runletapp/crabnode/mocks"
	"github.com/runletapp/crabnode/options"
)

func setUpBasicTest(t *testing.T) *gomock.Controller {
	ctrl := gomock.NewController(t)

	return setUpBasicTestWithCtrl(t, ctrl)
}

func setUpBasicTestWithCtrl(t *testing.T, ctrl *gomock.Controller) *gomock.Controller {
	return ctrl
}

func setDownBasicTest(ctrl *gomock.Controller) {
	ctrl.Finish()
}

// eventRecorder collects progress events delivered to a manager observer
type eventRecorder struct {
	mutex  sync.Mutex
	events []OperationProgress
}

func (recorder *eventRecorder) observe(progress OperationProgress) {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	recorder.events = append(recorder.events, progress)
}

func (recorder *eventRecorder) Events() []OperationProgress {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()

	return append([]OperationProgress{}, recorder.events...)
}

func (recorder *eventRecorder) ByOperation() map[string][]OperationProgress {
	byOperation := map[string][]OperationProgress{}
	for _, progress := range recorder.Events() {
		byOperation[progress.OperationID] = append(byOperation[progress.OperationID], progress)
	}

	return byOperation
}

func testOptions(t *testing.T, opts ...options.Option) []options.Option {
	return append([]options.Option{
		options.DataDir(t.TempDir()),
		options.RepoKind(options.RepoMemory),
		options.RefreshInterval(0),
		options.LogLevel("error"),
	}, opts...)
}

func setUpManagerTestWithNode(t *testing.T, node interfaces.Node, opts ...options.Option) (*Manager, *eventRecorder) {
	assert := assert.New(t)

	recorder := &eventRecorder{}
	factory := func(settings *options.Settings) (interfaces.Node, error) {
		return node, nil
	}

	m, err := New(factory, recorder.observe, testOptions(t, opts...)...)
	assert.Nil(err)

	return m, recorder
}

func setUpManagerTest(t *testing.T, opts ...options.Option) (*Manager, *mocks.MockNode, *eventRecorder, *gomock.Controller) {
	ctrl := setUpBasicTest(t)

	node := mocks.NewMockNode(ctrl)
	m, recorder := setUpManagerTestWithNode(t, node, opts...)

	return m, node, recorder, ctrl
}

func setDownManagerTest(m *Manager, ctrl *gomock.Controller) {
	m.Close()
	setDownBasicTest(ctrl)
}

// expectStartedNode sets up node to start and report its metadata
func expectStartedNode(node *mocks.MockNode) {
	node.EXPECT().Start(gomock.Any()).Return(nil)
	node.EXPECT().IsStarted().AnyTimes().Return(true)
	node.EXPECT().PeerID().AnyTimes().Return("QmPeer", nil)
	node.EXPECT().Version().AnyTimes().Return("1.2.3", nil)
	node.EXPECT().RepoPath().AnyTimes().Return("/data/repo", nil)
	node.EXPECT().Stop(gomock.Any()).AnyTimes().Return(nil)
}

func setUpConnectedManagerTest(t *testing.T, opts ...options.Option) (*Manager, *mocks.MockNode, *eventRecorder, *gomock.Controller) {
	m, node, recorder, ctrl := setUpManagerTest(t, opts...)
	expectStartedNode(node)

	assert.Nil(t, m.Connect(context.Background()))

	return m, node, recorder, ctrl
}

func writeTestFile(t *testing.T, size int) string {
	path := filepath.Join(t.TempDir(), "file.bin")
	assert.Nil(t, ioutil.WriteFile(path, make([]byte, size), 0644))

	return path
}
