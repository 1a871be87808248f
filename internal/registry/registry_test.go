package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vietddude/netswitch/internal/core/domain"
	"github.com/vietddude/netswitch/internal/core/endpoint"
	"github.com/vietddude/netswitch/internal/health"
	"github.com/vietddude/netswitch/internal/infra/storage/memory"
)

// =============================================================================
// Mocks
// =============================================================================

type fakeClient struct {
	id       string
	network  domain.Network
	provider domain.Provider
	target   domain.Target
	probe    func(ctx context.Context) (uint64, error)
	closed   atomic.Bool
}

func (c *fakeClient) ID() string                { return c.id }
func (c *fakeClient) Network() domain.Network   { return c.network }
func (c *fakeClient) Provider() domain.Provider { return c.provider }
func (c *fakeClient) Target() domain.Target     { return c.target }
func (c *fakeClient) Close() error              { c.closed.Store(true); return nil }

func (c *fakeClient) LatestHeight(ctx context.Context) (uint64, error) {
	if c.probe == nil {
		return 1, nil
	}
	return c.probe(ctx)
}

// fakeDialer builds fakeClients. Every client it builds shares the probe func.
type fakeDialer struct {
	mu    sync.Mutex
	dials int
	fail  bool
	probe func(ctx context.Context) (uint64, error)
	built []*fakeClient
}

func (d *fakeDialer) Dial(
	ctx context.Context,
	network domain.Network,
	provider domain.Provider,
	target domain.Target,
) (Client, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if d.fail {
		return nil, errors.New("malformed url")
	}
	c := &fakeClient{
		id:       fmt.Sprintf("client-%d", d.dials),
		network:  network,
		provider: provider,
		target:   target,
		probe:    d.probe,
	}
	d.built = append(d.built, c)
	return c, nil
}

func (d *fakeDialer) setFail(fail bool) {
	d.mu.Lock()
	d.fail = fail
	d.mu.Unlock()
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// sequence returns scripted heights in order; negative values are probe failures.
func sequence(values ...int64) func(ctx context.Context) (uint64, error) {
	var mu sync.Mutex
	i := 0
	return func(ctx context.Context) (uint64, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(values) {
			return 0, errors.New("no more heights")
		}
		v := values[i]
		i++
		if v < 0 {
			return 0, errors.New("timeout")
		}
		return uint64(v), nil
	}
}

// failingPrefs wraps the memory repo and fails writes on demand.
type failingPrefs struct {
	*memory.PreferenceRepo
	failWrites bool
}

func (p *failingPrefs) SetNetwork(ctx context.Context, n domain.Network) error {
	if p.failWrites {
		return errors.New("disk full")
	}
	return p.PreferenceRepo.SetNetwork(ctx, n)
}

func (p *failingPrefs) SetProvider(ctx context.Context, n domain.Network, pr domain.Provider) error {
	if p.failWrites {
		return errors.New("disk full")
	}
	return p.PreferenceRepo.SetProvider(ctx, n, pr)
}

var testResolver = endpoint.NewResolver(endpoint.Credentials{
	ObscuraTestnetKey: "tkey",
	ObscuraMainnetKey: "mkey",
	ObscuraDevnetKey:  "dkey",
	DevNodeIP:         "127.0.0.1",
})

func testMonitor() *health.Monitor {
	return health.NewMonitor(health.Config{Samples: 4, Interval: 0, ProbeTimeout: time.Second})
}

func newTestRegistry(t *testing.T, dialer *fakeDialer, prefs *memory.PreferenceRepo) *Registry {
	t.Helper()
	if prefs == nil {
		prefs = memory.NewPreferenceRepo()
	}
	r, err := New(context.Background(), Config{}, testResolver, dialer, prefs, testMonitor())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

// =============================================================================
// Tests
// =============================================================================

func TestNew_DefaultsWhenNothingPersisted(t *testing.T) {
	r := newTestRegistry(t, &fakeDialer{}, nil)

	cur := r.Current()
	if cur.Network() != domain.NetworkTestnet || cur.Provider() != domain.ProviderPrimary {
		t.Errorf("expected testnet/primary, got %s/%s", cur.Network(), cur.Provider())
	}
	if cur.Target().ChainID != "testnet3" {
		t.Errorf("expected chain testnet3, got %s", cur.Target().ChainID)
	}
}

func TestNew_UsesPersistedSelection(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferenceRepo()
	_ = prefs.SetNetwork(ctx, domain.NetworkMainnet)
	_ = prefs.SetProvider(ctx, domain.NetworkMainnet, domain.ProviderFallback)

	r := newTestRegistry(t, &fakeDialer{}, prefs)

	cur := r.Current()
	if cur.Network() != domain.NetworkMainnet || cur.Provider() != domain.ProviderFallback {
		t.Errorf("expected mainnet/fallback, got %s/%s", cur.Network(), cur.Provider())
	}
}

func TestNew_IgnoresGarbagePreference(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferenceRepo()
	_ = prefs.SetNetwork(ctx, "testnet2")

	r := newTestRegistry(t, &fakeDialer{}, prefs)
	if r.Current().Network() != domain.NetworkTestnet {
		t.Errorf("expected fallback to testnet, got %s", r.Current().Network())
	}
}

func TestNew_ConstructFailure(t *testing.T) {
	_, err := New(context.Background(), Config{}, testResolver, &fakeDialer{fail: true}, memory.NewPreferenceRepo(), testMonitor())
	if !errors.Is(err, domain.ErrConstruct) {
		t.Errorf("expected ErrConstruct, got %v", err)
	}
}

func TestSwitchNetwork(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, &fakeDialer{}, prefs)
	before := r.Current().(*fakeClient)

	if err := r.SwitchNetwork(ctx, domain.NetworkMainnet); err != nil {
		t.Fatalf("SwitchNetwork failed: %v", err)
	}

	after := r.Current()
	if after.Network() != domain.NetworkMainnet {
		t.Errorf("expected mainnet, got %s", after.Network())
	}
	if after.ID() == before.ID() {
		t.Error("expected a new client instance")
	}
	if !before.closed.Load() {
		t.Error("expected previous client to be closed")
	}
	if n, _ := prefs.GetNetwork(ctx); n != domain.NetworkMainnet {
		t.Errorf("expected persisted mainnet, got %q", n)
	}
}

func TestSwitchNetwork_UnknownChainKeepsClient(t *testing.T) {
	dialer := &fakeDialer{}
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, dialer, prefs)
	before := r.Current()
	dials := dialer.dialCount()

	err := r.SwitchNetwork(context.Background(), "unknown-chain")

	var se *SwitchError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SwitchError, got %T: %v", err, err)
	}
	if !errors.Is(err, domain.ErrUnsupportedNetwork) {
		t.Errorf("expected ErrUnsupportedNetwork, got %v", err)
	}
	if r.Current() != before {
		t.Error("current client changed after failed switch")
	}
	if dialer.dialCount() != dials {
		t.Error("dialer should not be called for an unsupported network")
	}
	if _, err := prefs.GetNetwork(context.Background()); err == nil {
		t.Error("unsupported network must not be persisted")
	}
}

func TestSwitchNetwork_ConstructFailurePreservesIdentity(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, dialer, nil)
	before := r.Current()

	dialer.setFail(true)
	err := r.SwitchNetwork(context.Background(), domain.NetworkMainnet)

	if !IsSwitchError(err) || !errors.Is(err, domain.ErrConstruct) {
		t.Fatalf("expected SwitchError(ErrConstruct), got %v", err)
	}
	if r.Current() != before {
		t.Error("current client changed after construct failure")
	}
	if before.(*fakeClient).closed.Load() {
		t.Error("current client must not be closed after a failed switch")
	}
}

func TestSwitchNetwork_StorageFailureStillSwitches(t *testing.T) {
	prefs := &failingPrefs{PreferenceRepo: memory.NewPreferenceRepo(), failWrites: true}
	r, err := New(context.Background(), Config{}, testResolver, &fakeDialer{}, prefs, testMonitor())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = r.SwitchNetwork(context.Background(), domain.NetworkDevnet)
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if IsSwitchError(err) {
		t.Error("storage failure must not be reported as an aborted switch")
	}
	if r.Current().Network() != domain.NetworkDevnet {
		t.Errorf("expected in-memory switch to devnet, got %s", r.Current().Network())
	}
}

func TestSwitchNetwork_UsesPreferredProviderOfTarget(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferenceRepo()
	_ = prefs.SetProvider(ctx, domain.NetworkMainnet, domain.ProviderFallback)
	r := newTestRegistry(t, &fakeDialer{}, prefs)

	if err := r.SwitchNetwork(ctx, domain.NetworkMainnet); err != nil {
		t.Fatalf("SwitchNetwork failed: %v", err)
	}
	if r.Current().Provider() != domain.ProviderFallback {
		t.Errorf("expected fallback provider for mainnet, got %s", r.Current().Provider())
	}
}

func TestSwitchProvider_Idempotent(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, dialer, prefs)

	if err := r.SwitchProvider(ctx, domain.ProviderFallback); err != nil {
		t.Fatalf("first SwitchProvider failed: %v", err)
	}
	first := r.Current()
	dials := dialer.dialCount()

	if err := r.SwitchProvider(ctx, domain.ProviderFallback); err != nil {
		t.Fatalf("second SwitchProvider failed: %v", err)
	}

	if dialer.dialCount() != dials {
		t.Errorf("second call reconstructed a client (%d -> %d dials)", dials, dialer.dialCount())
	}
	if r.Current() != first {
		t.Error("second call replaced the current client")
	}
	if p, _ := prefs.GetProvider(ctx, domain.NetworkTestnet); p != domain.ProviderFallback {
		t.Errorf("expected persisted fallback, got %q", p)
	}
	if first.Target().BaseURL != "https://api.explorer.aleo.org/v1" {
		t.Errorf("expected explorer target, got %s", first.Target().BaseURL)
	}
}

func TestSwitchProvider_Unsupported(t *testing.T) {
	r := newTestRegistry(t, &fakeDialer{}, nil)
	before := r.Current()

	err := r.SwitchProvider(context.Background(), "infura")
	if !IsSwitchError(err) || !errors.Is(err, domain.ErrUnsupportedProvider) {
		t.Errorf("expected SwitchError(ErrUnsupportedProvider), got %v", err)
	}
	if r.Current() != before {
		t.Error("current client changed")
	}
}

func TestCheckHealth_StalledFlipsPreferenceOnly(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{probe: sequence(100, 100, 100, 100)}
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, dialer, prefs)
	before := r.Current()

	liveness, err := r.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if liveness != domain.LivenessStalled {
		t.Errorf("expected stalled, got %s", liveness)
	}
	if p, _ := prefs.GetProvider(ctx, domain.NetworkTestnet); p != domain.ProviderFallback {
		t.Errorf("expected persisted fallback, got %q", p)
	}

	// The preference changes, the current client does not.
	if r.Current() != before || r.Current().Provider() != domain.ProviderPrimary {
		t.Error("CheckHealth must not swap the current client")
	}

	last, ok := r.LastAssessment()
	if !ok || len(last.Samples) != 4 {
		t.Fatalf("expected recorded assessment with 4 samples, got %+v", last)
	}

	// Applying the new preference rebuilds against the fallback target.
	if err := r.SwitchProvider(ctx, domain.ProviderFallback); err != nil {
		t.Fatalf("SwitchProvider failed: %v", err)
	}
	if r.Current() == before || r.Current().Provider() != domain.ProviderFallback {
		t.Errorf("expected client rebuilt for fallback, got %s", r.Current().Provider())
	}
}

func TestCheckHealth_AdvancingKeepsPrimary(t *testing.T) {
	ctx := context.Background()
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, &fakeDialer{probe: sequence(10, 11, 11, 12)}, prefs)

	liveness, err := r.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if liveness != domain.LivenessAdvancing {
		t.Errorf("expected advancing, got %s", liveness)
	}
	if p, _ := prefs.GetProvider(ctx, domain.NetworkTestnet); p != domain.ProviderPrimary {
		t.Errorf("expected persisted primary, got %q", p)
	}
}

func TestCheckHealth_ProbeFailuresAreStalled(t *testing.T) {
	r := newTestRegistry(t, &fakeDialer{probe: sequence(10, -1, -1, -1)}, nil)

	liveness, err := r.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("probe failures must not abort the check: %v", err)
	}
	if liveness != domain.LivenessStalled {
		t.Errorf("expected stalled, got %s", liveness)
	}
}

func TestCheckHealth_ConstructFailureIsHardError(t *testing.T) {
	dialer := &fakeDialer{}
	r := newTestRegistry(t, dialer, nil)

	dialer.setFail(true)
	if _, err := r.CheckHealth(context.Background()); !errors.Is(err, domain.ErrConstruct) {
		t.Errorf("expected ErrConstruct, got %v", err)
	}
}

func TestCheckHealth_DoesNotBlockReaders(t *testing.T) {
	release := make(chan struct{})
	var entered sync.Once
	started := make(chan struct{})

	dialer := &fakeDialer{}
	r := newTestRegistry(t, dialer, nil)

	dialer.mu.Lock()
	dialer.probe = func(ctx context.Context) (uint64, error) {
		entered.Do(func() { close(started) })
		select {
		case <-release:
		case <-ctx.Done():
		}
		return 1, nil
	}
	dialer.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.CheckHealth(context.Background())
	}()

	<-started
	readDone := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_ = r.Current()
		}
		close(readDone)
	}()

	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("readers blocked while a health check was in progress")
	}

	close(release)
	<-done
}

func TestCheckHealth_SharesInFlightAssessment(t *testing.T) {
	var probes atomic.Int32
	gate := make(chan struct{})
	dialer := &fakeDialer{}
	r := newTestRegistry(t, dialer, nil)

	dialer.mu.Lock()
	dialer.probe = func(ctx context.Context) (uint64, error) {
		<-gate
		return uint64(probes.Add(1)), nil
	}
	dialer.mu.Unlock()

	var wg sync.WaitGroup
	results := make([]domain.Liveness, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = r.CheckHealth(context.Background())
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	if got := probes.Load(); got > 8 {
		t.Errorf("expected concurrent checks to share assessments, got %d probes", got)
	}
	for i, l := range results {
		if l != domain.LivenessAdvancing {
			t.Errorf("caller %d: expected advancing, got %s", i, l)
		}
	}
}

func TestConcurrentReadsDuringSwitch(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{}
	r := newTestRegistry(t, dialer, nil)

	stop := make(chan struct{})
	var readers sync.WaitGroup
	var bad atomic.Int32

	for i := 0; i < 8; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				c := r.Current()
				if c == nil || c.ID() == "" || c.Target().BaseURL == "" || c.Network() == "" {
					bad.Add(1)
				}
			}
		}()
	}

	networks := []domain.Network{domain.NetworkMainnet, domain.NetworkDevnet, domain.NetworkTestnet}
	for i := 0; i < 30; i++ {
		if err := r.SwitchNetwork(ctx, networks[i%len(networks)]); err != nil {
			t.Fatalf("SwitchNetwork failed: %v", err)
		}
	}

	close(stop)
	readers.Wait()

	if bad.Load() != 0 {
		t.Errorf("readers observed %d incomplete clients", bad.Load())
	}
	if r.Current().Network() != domain.NetworkTestnet {
		t.Errorf("expected final network testnet, got %s", r.Current().Network())
	}
}

func TestLatestHeight(t *testing.T) {
	dialer := &fakeDialer{probe: sequence(42, -1)}
	r := newTestRegistry(t, dialer, nil)

	h, err := r.LatestHeight(context.Background())
	if err != nil || h != 42 {
		t.Fatalf("expected 42, got %d, %v", h, err)
	}

	// Second call is served from the head cache when a TTL is configured;
	// with the default zero TTL it probes again and surfaces the failure.
	if _, err := r.LatestHeight(context.Background()); !errors.Is(err, domain.ErrProbe) {
		t.Errorf("expected ErrProbe, got %v", err)
	}
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	r := newTestRegistry(t, &fakeDialer{probe: sequence(7, 7, 7, 7, 7)}, nil)

	st := r.Status(ctx)
	if st.Network != domain.NetworkTestnet || st.Provider != domain.ProviderPrimary {
		t.Errorf("unexpected selection %s/%s", st.Network, st.Provider)
	}
	if st.ChainID != "testnet3" || st.ClientID != r.Current().ID() {
		t.Errorf("unexpected client details: %+v", st)
	}
	if st.Height != 7 || st.Last != nil {
		t.Errorf("expected height 7 and no assessment, got %+v", st)
	}

	// The probing client shares the scripted sequence: 7, 7, 7, 7.
	if _, err := r.CheckHealth(ctx); err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	st = r.Status(ctx)
	if st.Last == nil || st.Last.Liveness != domain.LivenessStalled {
		t.Errorf("expected last assessment stalled, got %+v", st.Last)
	}
	if st.Preferred != domain.ProviderFallback {
		t.Errorf("expected preferred fallback, got %s", st.Preferred)
	}
}

func TestNew_MissingKeyFallsBackToExplorer(t *testing.T) {
	// No Obscura key: the primary target has no key segment and fails to build.
	resolver := endpoint.NewResolver(endpoint.Credentials{})
	dialer := keyCheckingDialer()

	r, err := New(context.Background(), Config{}, resolver, dialer, memory.NewPreferenceRepo(), testMonitor())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.Current().Provider() != domain.ProviderFallback {
		t.Errorf("expected fallback provider, got %s", r.Current().Provider())
	}
}

// keyCheckingDialer rejects targets whose URL lacks an API key, like the
// real Aleo client does.
func keyCheckingDialer() Dialer {
	inner := &fakeDialer{}
	return DialerFunc(func(
		ctx context.Context,
		network domain.Network,
		provider domain.Provider,
		target domain.Target,
	) (Client, error) {
		if strings.HasSuffix(target.BaseURL, "/v1/") {
			return nil, fmt.Errorf("%w: missing api key", domain.ErrConstruct)
		}
		return inner.Dial(ctx, network, provider, target)
	})
}

func TestCheckHealth_PrimaryWinsPreferenceBack(t *testing.T) {
	ctx := context.Background()
	dialer := &fakeDialer{probe: sequence(100, 100, 100, 100, 200, 201, 202, 203)}
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, dialer, prefs)

	if l, err := r.CheckHealth(ctx); err != nil || l != domain.LivenessStalled {
		t.Fatalf("expected stalled, got %s, %v", l, err)
	}
	if err := r.SwitchProvider(ctx, domain.ProviderFallback); err != nil {
		t.Fatalf("SwitchProvider failed: %v", err)
	}

	// Running on fallback, primary recovers.
	l, err := r.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if l != domain.LivenessAdvancing {
		t.Errorf("expected advancing, got %s", l)
	}
	if p, _ := prefs.GetProvider(ctx, domain.NetworkTestnet); p != domain.ProviderPrimary {
		t.Errorf("expected persisted primary after recovery, got %q", p)
	}

	last, _ := r.LastAssessment()
	if last.Provider != domain.ProviderPrimary {
		t.Errorf("expected primary to be assessed, got %s", last.Provider)
	}
	if r.Current().Provider() != domain.ProviderFallback {
		t.Errorf("current client must stay on fallback until switched, got %s", r.Current().Provider())
	}
}

func TestCheckHealth_SwitchDuringCheckWins(t *testing.T) {
	ctx := context.Background()
	gate := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	var height atomic.Uint64

	dialer := &fakeDialer{}
	prefs := memory.NewPreferenceRepo()
	r := newTestRegistry(t, dialer, prefs)

	dialer.mu.Lock()
	dialer.probe = func(ctx context.Context) (uint64, error) {
		once.Do(func() { close(started) })
		<-gate
		return height.Add(1), nil
	}
	dialer.mu.Unlock()

	done := make(chan domain.Liveness)
	go func() {
		l, _ := r.CheckHealth(ctx)
		done <- l
	}()

	<-started
	if err := r.SwitchProvider(ctx, domain.ProviderFallback); err != nil {
		t.Fatalf("SwitchProvider failed: %v", err)
	}
	close(gate)

	if l := <-done; l != domain.LivenessAdvancing {
		t.Errorf("expected advancing, got %s", l)
	}
	if p, _ := prefs.GetProvider(ctx, domain.NetworkTestnet); p != domain.ProviderFallback {
		t.Errorf("switch made during the check was overwritten, got %q", p)
	}
	if r.Current().Provider() != domain.ProviderFallback {
		t.Errorf("expected fallback client, got %s", r.Current().Provider())
	}
}

// statsClient reports request statistics like the Aleo client does.
type statsClient struct {
	*fakeClient
	stats domain.ClientHealth
}

func (c *statsClient) GetHealth() domain.ClientHealth { return c.stats }

func TestSnapshot_IncludesClientStats(t *testing.T) {
	inner := &fakeDialer{probe: sequence(9)}
	dialer := DialerFunc(func(
		ctx context.Context,
		network domain.Network,
		provider domain.Provider,
		target domain.Target,
	) (Client, error) {
		c, err := inner.Dial(ctx, network, provider, target)
		if err != nil {
			return nil, err
		}
		return &statsClient{
			fakeClient: c.(*fakeClient),
			stats:      domain.ClientHealth{Available: true, ErrorRate: 0.25, LastHeight: 9},
		}, nil
	})

	r, err := New(context.Background(), Config{}, testResolver, dialer, memory.NewPreferenceRepo(), testMonitor())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	snap := r.Snapshot()
	if snap.Client == nil || !snap.Client.Available || snap.Client.ErrorRate != 0.25 {
		t.Fatalf("expected client stats in snapshot, got %+v", snap.Client)
	}
	if snap.Height != 0 || snap.HeightError != "" {
		t.Errorf("snapshot must not query the endpoint, got %+v", snap)
	}

	st := r.Status(context.Background())
	if st.Client == nil || st.Client.LastHeight != 9 || st.Height != 9 {
		t.Errorf("expected stats and height in status, got %+v", st)
	}
}
