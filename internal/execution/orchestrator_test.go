package execution

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ptc/internal/config"
	"ptc/internal/domain"
	"ptc/internal/parser"
	"ptc/internal/tree"
)

type fakeInvoker struct {
	outputs map[string]string
	errs    map[string]error
	calls   []string
	onCall  func(label string)
}

func (f *fakeInvoker) Invoke(_ context.Context, ch Channel, label string) (string, error) {
	f.calls = append(f.calls, label)
	if f.onCall != nil {
		f.onCall(label)
	}
	if err := f.errs[label]; err != nil {
		return "", err
	}
	return f.outputs[label], nil
}

type recordingObserver struct {
	started  []string
	finished []domain.Status
}

func (r *recordingObserver) CaseStarted(n *tree.Node) {
	r.started = append(r.started, n.Label)
}

func (r *recordingObserver) CaseFinished(_ *tree.Node, e domain.Entry) {
	r.finished = append(r.finished, e.Status)
}

func buildTree(files map[string][]string) (*tree.Tree, map[string]*tree.Node) {
	tr := tree.New()
	nodes := make(map[string]*tree.Node)
	for key, labels := range files {
		var cases []*tree.Node
		for i, label := range labels {
			cases = append(cases, tree.NewCase(fmt.Sprint(i), label, domain.Range{
				Start: domain.Position{Line: i},
				End:   domain.Position{Line: i, Column: 5 + len(label)},
			}))
		}
		nodes[key] = tr.Reconcile(key, key, "/ws/PTst/"+key, cases)
	}
	return tr, nodes
}

func newOrchestrator(t *testing.T, tr *tree.Tree, inv Invoker, order string) (*Orchestrator, *[]*fakeChannel) {
	t.Helper()
	created := &[]*fakeChannel{}
	sel := NewSelector(config.DefaultReservedChannel, fakeFactory(created), zaptest.NewLogger(t))
	o := NewOrchestrator(tr, sel, inv, parser.NewCheckerParser(), NewScheduler(order), zaptest.NewLogger(t))
	return o, created
}

func entryLabels(r *domain.Report) []string {
	var out []string
	for _, e := range r.Entries {
		out = append(out, e.Label)
	}
	return out
}

func TestOrchestrator_Run(t *testing.T) {
	tr, files := buildTree(map[string][]string{"TestFoo.p": {"Bar", "Baz", "Qux"}})
	inv := &fakeInvoker{outputs: map[string]string{
		"Bar": "..... Found 0 bugs.",
		"Baz": "the checker found a bug",
		"Qux": "",
	}}
	obs := &recordingObserver{}
	o, created := newOrchestrator(t, tr, inv, config.OrderDeclaration)
	o.SetObserver(obs)

	report := o.Run(context.Background(), Request{Include: []*tree.Node{files["TestFoo.p"]}})

	require.True(t, report.Ended)
	assert.False(t, report.Cancelled)
	assert.Equal(t, 3, report.Requested)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, []string{"Bar", "Baz", "Qux"}, entryLabels(report))
	assert.Equal(t, []string{"Bar", "Baz", "Qux"}, obs.started)

	bar, baz, qux := report.Entries[0], report.Entries[1], report.Entries[2]
	assert.Equal(t, domain.StatusPassed, bar.Status)
	assert.Empty(t, bar.Message)

	assert.Equal(t, domain.StatusFailed, baz.Status)
	assert.Equal(t, domain.MessageFailed, baz.Message)
	require.NotNil(t, baz.Location)
	assert.Equal(t, "/ws/PTst/TestFoo.p", baz.Location.File)
	assert.Equal(t, 1, baz.Location.Range.Start.Line)
	assert.Equal(t, "the checker found a bug", baz.Detail)
	assert.Equal(t, "TestFoo.p", baz.FileKey)
	assert.Equal(t, "1", baz.CaseKey)

	assert.Equal(t, domain.StatusErrored, qux.Status)
	assert.Equal(t, domain.MessageErrored, qux.Message)

	// node statuses match the report
	for _, c := range files["TestFoo.p"].Children() {
		status, _, _ := c.Result()
		for _, e := range report.Entries {
			if e.Label == c.Label {
				assert.Equal(t, e.Status, status, c.Label)
			}
		}
	}

	// the channel was released after the run
	require.Len(t, *created, 1)
	assert.Equal(t, "ptc-1", (*created)[0].Name())
	assert.Len(t, (*created)[0].sent, 0, "the fake invoker never sends")
}

func TestOrchestrator_Order(t *testing.T) {
	tr, files := buildTree(map[string][]string{
		"TestA.p": {"A1", "A2"},
		"TestB.p": {"B1"},
	})
	b1 := files["TestB.p"].Children()[0]

	tests := []struct {
		name    string
		order   string
		include []*tree.Node
		want    []string
	}{
		{
			name:    "declaration order follows caller then declaration",
			order:   config.OrderDeclaration,
			include: []*tree.Node{b1, files["TestA.p"]},
			want:    []string{"B1", "A1", "A2"},
		},
		{
			name:    "lifo runs last expanded first",
			order:   config.OrderLIFO,
			include: []*tree.Node{b1, files["TestA.p"]},
			want:    []string{"A2", "A1", "B1"},
		},
		{
			name:    "duplicates are visited once",
			order:   config.OrderDeclaration,
			include: []*tree.Node{files["TestB.p"], b1, files["TestB.p"]},
			want:    []string{"B1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvoker{}
			o, _ := newOrchestrator(t, tr, inv, tt.order)
			report := o.Run(context.Background(), Request{Include: tt.include})
			assert.Equal(t, tt.want, inv.calls)
			assert.Equal(t, tt.want, entryLabels(report))
		})
	}
}

func TestOrchestrator_InvokeErrorIsErrored(t *testing.T) {
	tr, files := buildTree(map[string][]string{"TestA.p": {"A1", "A2"}})
	inv := &fakeInvoker{
		outputs: map[string]string{"A2": "Found 0 bugs"},
		errs:    map[string]error{"A1": errors.New("read output file: no such file")},
	}
	o, _ := newOrchestrator(t, tr, inv, config.OrderDeclaration)

	report := o.Run(context.Background(), Request{Include: []*tree.Node{files["TestA.p"]}})

	require.Len(t, report.Entries, 2)
	assert.Equal(t, domain.StatusErrored, report.Entries[0].Status)
	assert.Equal(t, domain.StatusPassed, report.Entries[1].Status)
}

func TestOrchestrator_Cancel(t *testing.T) {
	tr, files := buildTree(map[string][]string{"TestA.p": {"A1", "A2", "A3"}})
	ctx, cancel := context.WithCancel(context.Background())
	inv := &fakeInvoker{
		outputs: map[string]string{"A1": "Found 0 bugs", "A2": "Found 0 bugs", "A3": "Found 0 bugs"},
		// cancelling during a case lets that case finish
		onCall: func(label string) {
			if label == "A2" {
				cancel()
			}
		},
	}
	o, _ := newOrchestrator(t, tr, inv, config.OrderDeclaration)

	report := o.Run(ctx, Request{Include: []*tree.Node{files["TestA.p"]}})

	assert.True(t, report.Cancelled)
	assert.True(t, report.Ended)
	assert.Equal(t, []string{"A1", "A2"}, entryLabels(report))

	a3 := files["TestA.p"].Children()[2]
	assert.Equal(t, domain.StatusUnstarted, a3.Status())
}

func TestOrchestrator_FailFast(t *testing.T) {
	tr, files := buildTree(map[string][]string{"TestA.p": {"A1", "A2", "A3"}})
	inv := &fakeInvoker{outputs: map[string]string{
		"A1": "Found 0 bugs",
		"A2": "found a bug",
		"A3": "Found 0 bugs",
	}}
	o, _ := newOrchestrator(t, tr, inv, config.OrderDeclaration)

	report := o.Run(context.Background(), Request{Include: []*tree.Node{files["TestA.p"]}, FailFast: true})

	assert.Equal(t, []string{"A1", "A2"}, entryLabels(report))
	assert.Equal(t, domain.StatusUnstarted, files["TestA.p"].Children()[2].Status())
}

func TestOrchestrator_NoChannel(t *testing.T) {
	tr, files := buildTree(map[string][]string{"TestA.p": {"A1", "A2"}})
	inv := &fakeInvoker{}
	sel := NewSelector("RunTask", func(string) (Channel, error) {
		return nil, errors.New("no terminal")
	}, zaptest.NewLogger(t))
	o := NewOrchestrator(tr, sel, inv, parser.NewCheckerParser(), DeclarationScheduler{}, zaptest.NewLogger(t))

	report := o.Run(context.Background(), Request{Include: []*tree.Node{files["TestA.p"]}})

	require.Len(t, report.Entries, 2)
	for _, e := range report.Entries {
		assert.Equal(t, domain.StatusErrored, e.Status)
	}
	assert.Empty(t, inv.calls)
}

func TestOrchestrator_EmptyRequest(t *testing.T) {
	tr := tree.New()
	o, created := newOrchestrator(t, tr, &fakeInvoker{}, config.OrderDeclaration)

	report := o.Run(context.Background(), Request{})

	assert.True(t, report.Ended)
	assert.Empty(t, report.Entries)
	assert.Empty(t, *created)
}

func TestOrchestrator_RunKeepsFileKeyWhenFileReparsed(t *testing.T) {
	tr, _ := buildTree(map[string][]string{"TestFoo.p": {"Bar", "Baz"}})

	inv := &fakeInvoker{outputs: map[string]string{"Bar": "Found 0 bugs", "Baz": "Found 0 bugs"}}
	inv.onCall = func(label string) {
		if label == "Bar" {
			// the file is saved while the run is going
			tr.Reconcile("TestFoo.p", "TestFoo.p", "/ws/PTst/TestFoo.p", []*tree.Node{
				tree.NewCase("0", "Bar", domain.Range{}),
			})
		}
	}
	o, _ := newOrchestrator(t, tr, inv, config.OrderDeclaration)

	files := tr.Files()
	report := o.Run(context.Background(), Request{Include: files})

	require.Len(t, report.Entries, 2)
	for _, e := range report.Entries {
		assert.Equal(t, "TestFoo.p", e.FileKey, e.Label)
	}
}
