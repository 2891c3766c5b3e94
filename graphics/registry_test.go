package graphics

import (
	"errors"
	"testing"

	xrerrors "github.com/wippyai/xr-bridge/errors"
	"github.com/wippyai/xr-bridge/xr"
)

func nilFactory(xr.Runtime) (Adapter, error) { return nil, nil }

func failingFactory(xr.Runtime) (Adapter, error) { return nil, errors.New("no device") }

func TestRegister_Duplicate(t *testing.T) {
	const driver = "test_duplicate"
	if err := Register(driver, nilFactory); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer Unregister(driver)

	err := Register(driver, failingFactory)
	if err == nil {
		t.Fatal("duplicate driver accepted")
	}
	var xe *xrerrors.Error
	if !errors.As(err, &xe) || xe.Kind != xrerrors.KindAlreadyInitialized {
		t.Errorf("err = %v", err)
	}

	// the first factory is still in place
	if _, err := New(driver, nil); err != nil {
		t.Errorf("New: %v", err)
	}

	Unregister(driver)
	if err := Register(driver, failingFactory); err != nil {
		t.Fatalf("Register after Unregister: %v", err)
	}
	if _, err := New(driver, nil); err == nil {
		t.Error("replacement factory not used")
	}
}

func TestRegister_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		factory Factory
	}{
		{"empty name", "", nilFactory},
		{"nil factory", "test_nil", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Register(tt.driver, tt.factory); err == nil {
				t.Error("expected error")
			}
			if IsRegistered(tt.driver) {
				t.Error("invalid driver registered")
			}
		})
	}
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	const driver = "test_must"
	MustRegister(driver, nilFactory)
	defer Unregister(driver)

	defer func() {
		if recover() == nil {
			t.Error("MustRegister did not panic")
		}
	}()
	MustRegister(driver, nilFactory)
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("test_missing", nil)
	if !errors.Is(err, &xrerrors.Error{Phase: xrerrors.PhaseGraphics, Kind: xrerrors.KindNotFound}) {
		t.Errorf("err = %v", err)
	}
}
