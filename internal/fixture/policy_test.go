package fixture

import "testing"

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in     string
		want   CrashPolicy
		wantOK bool
	}{
		{"never", PolicyNever, true},
		{"always", PolicyAlways, true},
		{"on-path", PolicyOnPath, true},
		{"onpath", PolicyOnPath, true},
		{"flag", PolicyWhenFlag, true},
		{"env", PolicyWhenFlag, true},
		{"  Always ", PolicyAlways, true},
		{"NEVER", PolicyNever, true},
		{"sometimes", PolicyWhenFlag, false},
		{"", PolicyWhenFlag, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePolicy(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParsePolicy(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestPolicy_String(t *testing.T) {
	tests := []struct {
		policy CrashPolicy
		want   string
	}{
		{PolicyNever, "never"},
		{PolicyAlways, "always"},
		{PolicyOnPath, "on-path"},
		{PolicyWhenFlag, "flag"},
		{CrashPolicy(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.policy.String(); got != tt.want {
			t.Errorf("String() = %v, want %v", got, tt.want)
		}
	}
}

func TestRequestTarget(t *testing.T) {
	tests := []struct {
		name    string
		request string
		want    string
	}{
		{"plain GET", "GET /crash HTTP/1.1\r\nHost: x\r\n\r\n", "/crash"},
		{"root path", "GET / HTTP/1.1\r\n\r\n", "/"},
		{"no version", "GET /crash", "/crash"},
		{"bare newline", "GET /other\nrest", "/other"},
		{"method only", "GET", ""},
		{"empty", "", ""},
		{"garbage", "\x00\x01\x02", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requestTarget([]byte(tt.request)); got != tt.want {
				t.Errorf("requestTarget(%q) = %q, want %q", tt.request, got, tt.want)
			}
		})
	}
}

func TestDecider_ShouldCrash(t *testing.T) {
	get := func(path string) []byte {
		return []byte("GET " + path + " HTTP/1.1\r\nHost: x\r\n\r\n")
	}
	flagOn := func() bool { return true }
	flagOff := func() bool { return false }

	tests := []struct {
		name    string
		cfg     Config
		flagSet func() bool
		request []byte
		want    bool
	}{
		{"never ignores crash path", Config{Policy: PolicyNever, CrashPath: "/crash"}, nil, get("/crash"), false},
		{"always crashes on any request", Config{Policy: PolicyAlways}, nil, get("/"), true},
		{"always crashes on garbage", Config{Policy: PolicyAlways}, nil, []byte("not http"), true},
		{"on-path hit", Config{Policy: PolicyOnPath, CrashPath: "/crash"}, nil, get("/crash"), true},
		{"on-path miss", Config{Policy: PolicyOnPath, CrashPath: "/crash"}, nil, get("/other"), false},
		{"on-path prefix is not a match", Config{Policy: PolicyOnPath, CrashPath: "/crash"}, nil, get("/crashing"), false},
		{"flag off never crashes", Config{Policy: PolicyWhenFlag, CrashPath: "/crash"}, flagOff, get("/crash"), false},
		{"flag on with path hit", Config{Policy: PolicyWhenFlag, CrashPath: "/crash"}, flagOn, get("/crash"), true},
		{"flag on with path miss", Config{Policy: PolicyWhenFlag, CrashPath: "/crash"}, flagOn, get("/other"), false},
		{"flag on without path gate", Config{Policy: PolicyWhenFlag}, flagOn, get("/anything"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDecider(tt.cfg, tt.flagSet)
			got, reason := d.shouldCrash(tt.request)
			if got != tt.want {
				t.Errorf("shouldCrash() = %v, want %v", got, tt.want)
			}
			if got && reason == "" {
				t.Error("crash decision should carry a reason")
			}
		})
	}
}

func TestDecider_DefaultFlagSourceIsEnv(t *testing.T) {
	d := newDecider(Config{Policy: PolicyWhenFlag, CrashPath: "/crash"}, nil)
	req := []byte("GET /crash HTTP/1.1\r\n\r\n")

	t.Setenv(EnableCrashEnv, "")
	if got, _ := d.shouldCrash(req); got {
		t.Error("shouldCrash() with ENABLE_CRASH unset = true, want false")
	}

	t.Setenv(EnableCrashEnv, "true")
	if got, _ := d.shouldCrash(req); !got {
		t.Error("shouldCrash() with ENABLE_CRASH=true = false, want true")
	}

	// The switch is read per request, so flipping it back takes effect.
	t.Setenv(EnableCrashEnv, "false")
	if got, _ := d.shouldCrash(req); got {
		t.Error("shouldCrash() with ENABLE_CRASH=false = true, want false")
	}
}
