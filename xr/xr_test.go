package xr

import (
	"testing"
)

func TestResult_String(t *testing.T) {
	tests := []struct {
		res  Result
		want string
	}{
		{Success, "XR_SUCCESS"},
		{ErrorPathUnsupported, "XR_ERROR_PATH_UNSUPPORTED"},
		{ErrorActionsetsAlreadyAttached, "XR_ERROR_ACTIONSETS_ALREADY_ATTACHED"},
		{Result(-9999), "Error code -9999"},
	}
	for _, tt := range tests {
		if got := tt.res.String(); got != tt.want {
			t.Errorf("Result(%d).String() = %q, want %q", int32(tt.res), got, tt.want)
		}
	}
}

func TestResult_Classification(t *testing.T) {
	if !TimeoutExpired.Succeeded() || TimeoutExpired.Unqualified() {
		t.Error("TimeoutExpired should be a qualified success")
	}
	if !ErrorRuntimeFailure.Failed() {
		t.Error("ErrorRuntimeFailure should fail")
	}
	if !Success.Unqualified() {
		t.Error("Success should be unqualified")
	}
}

func TestMakeVersion(t *testing.T) {
	v := MakeVersion(1, 2, 300)
	if v.Major() != 1 || v.Minor() != 2 || v.Patch() != 300 {
		t.Fatalf("unpacked %d.%d.%d", v.Major(), v.Minor(), v.Patch())
	}
	if v.String() != "1.2.300" {
		t.Fatalf("String = %q", v.String())
	}
}

func TestSessionState_String(t *testing.T) {
	if SessionStateFocused.String() != "XR_SESSION_STATE_FOCUSED" {
		t.Errorf("got %q", SessionStateFocused.String())
	}
	if SessionState(42).Valid() {
		t.Error("state 42 should be invalid")
	}
	if SessionState(42).String() != "SessionState(42)" {
		t.Errorf("got %q", SessionState(42).String())
	}
}

func TestChain(t *testing.T) {
	type first struct{ n int }
	type second struct{ s string }

	var head *Chain
	if head.Len() != 0 {
		t.Fatal("nil chain should have length 0")
	}

	head = Prepend(head, &first{n: 1})
	head = Prepend(head, &second{s: "x"})

	if head.Len() != 2 {
		t.Fatalf("Len = %d, want 2", head.Len())
	}
	values := head.Values()
	if _, ok := values[0].(*second); !ok {
		t.Fatalf("head value = %T, want *second", values[0])
	}

	f, ok := FindIn[*first](head)
	if !ok || f.n != 1 {
		t.Fatalf("FindIn[*first] = %v, %v", f, ok)
	}
	if _, ok := FindIn[*int](head); ok {
		t.Fatal("FindIn[*int] should miss")
	}
}

func TestEnumerate(t *testing.T) {
	t.Run("two calls", func(t *testing.T) {
		source := []string{"a", "b", "c"}
		calls := 0
		got, res := Enumerate(func(dst []string) (uint32, Result) {
			calls++
			if dst == nil {
				return uint32(len(source)), Success
			}
			return uint32(copy(dst, source)), Success
		})
		if res.Failed() || len(got) != 3 || got[2] != "c" {
			t.Fatalf("Enumerate = %v, %v", got, res)
		}
		if calls != 2 {
			t.Fatalf("calls = %d, want 2", calls)
		}
	})

	t.Run("empty", func(t *testing.T) {
		got, res := Enumerate(func(dst []int) (uint32, Result) { return 0, Success })
		if res.Failed() || got != nil {
			t.Fatalf("Enumerate = %v, %v", got, res)
		}
	})

	t.Run("failure", func(t *testing.T) {
		_, res := Enumerate(func(dst []int) (uint32, Result) { return 0, ErrorRuntimeFailure })
		if res != ErrorRuntimeFailure {
			t.Fatalf("res = %v", res)
		}
	})

	t.Run("grown between calls", func(t *testing.T) {
		size := uint32(1)
		got, res := Enumerate(func(dst []int) (uint32, Result) {
			if dst == nil {
				return size, Success
			}
			if uint32(len(dst)) < 2 {
				size = 2
				return 2, ErrorSizeInsufficient
			}
			dst[0], dst[1] = 1, 2
			return 2, Success
		})
		if res.Failed() || len(got) != 2 {
			t.Fatalf("Enumerate = %v, %v", got, res)
		}
	})
}
