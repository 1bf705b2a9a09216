package detector

import (
	"testing"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

const (
	uaPixel   = "Mozilla/5.0 (Linux; Android 14; Pixel 8 Pro) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaSamsung = "Mozilla/5.0 (Linux; Android 13; SM-S918B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Mobile Safari/537.36"
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Mobile/15E148 Safari/604.1"
	uaIPad    = "Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"
	uaMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	uaWin10   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaWin7    = "Mozilla/5.0 (Windows NT 6.1; WOW64; Trident/7.0; rv:11.0) like Gecko"
	uaWinXP   = "Mozilla/5.0 (Windows NT 5.1; rv:52.0) Gecko/20100101 Firefox/52.0"
	uaLinux   = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaRedmi   = "Mozilla/5.0 (Linux; Android 12; Redmi Note 11) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0 Mobile Safari/537.36"
	uaHuawei  = "Mozilla/5.0 (Linux; Android 10; HUAWEI P30) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0 Mobile Safari/537.36"
)

func TestDetectOS(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want OSInfo
	}{
		{"android", uaPixel, OSInfo{"Android", "14"}},
		{"iphone", uaIPhone, OSInfo{"iOS", "17.2"}},
		{"ipad", uaIPad, OSInfo{"iOS", "16.6"}},
		{"macos", uaMac, OSInfo{"macOS", "10.15.7"}},
		{"windows 10", uaWin10, OSInfo{"Windows", "10/11"}},
		{"windows 7", uaWin7, OSInfo{"Windows", "7"}},
		{"windows unmapped", uaWinXP, OSInfo{"Windows", "5.1"}},
		{"linux", uaLinux, OSInfo{"Linux", model.Unknown}},
		{"empty", "", OSInfo{model.Unknown, model.Unknown}},
		{"bot", "curl/8.4.0", OSInfo{model.Unknown, model.Unknown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectOS(tt.ua, browser.ClientHints{})
			if got != tt.want {
				t.Errorf("DetectOS() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetectOSPlatformHint(t *testing.T) {
	// A reduced UA without an OS signature falls back to the structured hint.
	got := DetectOS("Mozilla/5.0 AppleWebKit/537.36", browser.ClientHints{Platform: "macOS", PlatformVersion: "14.2.0"})
	if got != (OSInfo{"macOS", "14.2.0"}) {
		t.Errorf("DetectOS() with hint = %+v", got)
	}

	got = DetectOS("", browser.ClientHints{Platform: "Windows"})
	if got != (OSInfo{"Windows", model.Unknown}) {
		t.Errorf("DetectOS() with versionless hint = %+v", got)
	}

	// UA signature wins over the hint.
	got = DetectOS(uaLinux, browser.ClientHints{Platform: "Android"})
	if got.OS != "Linux" {
		t.Errorf("UA signature should win, got %+v", got)
	}

	got = DetectOS("", browser.ClientHints{Platform: "PlayStation"})
	if got.OS != model.Unknown {
		t.Errorf("unknown hint should stay Unknown, got %+v", got)
	}
}

func TestDetectBrandModel(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"iphone", uaIPhone, "Apple iPhone"},
		{"ipad", uaIPad, "Apple iPad"},
		{"pixel", uaPixel, "Google Pixel 8 Pro"},
		{"samsung model", uaSamsung, "Samsung SM-S918B"},
		{"samsung generic", "Mozilla/5.0 (Linux; Android 9; SAMSUNG Tab)", "Samsung"},
		{"huawei", uaHuawei, "Huawei"},
		{"redmi", uaRedmi, "Xiaomi/Redmi"},
		{"oneplus", "Mozilla/5.0 (Linux; Android 13; OnePlus 11)", "OnePlus"},
		{"motorola", "Mozilla/5.0 (Linux; Android 12; moto g(60))", "Motorola"},
		{"nokia", "Mozilla/5.0 (Linux; Android 11; Nokia G20)", "Nokia"},
		{"desktop", uaWin10, model.Unknown},
		{"empty", "", model.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectBrandModel(tt.ua); got != tt.want {
				t.Errorf("DetectBrandModel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBrandIndependentOfOS(t *testing.T) {
	// Brand matches even though the UA has no OS signature.
	ua := "NokiaBrowser/1.0"
	if got := DetectBrandModel(ua); got != "Nokia" {
		t.Errorf("DetectBrandModel() = %q, want Nokia", got)
	}
	if got := DetectOS(ua, browser.ClientHints{}); got.OS != model.Unknown {
		t.Errorf("DetectOS() = %+v, want Unknown", got)
	}
}

func TestDetectPlatform(t *testing.T) {
	mobile := true
	desktop := false

	tests := []struct {
		name  string
		ua    string
		hints browser.ClientHints
		want  model.Platform
	}{
		{"android", uaPixel, browser.ClientHints{}, model.MobileWeb},
		{"iphone", uaIPhone, browser.ClientHints{}, model.MobileWeb},
		{"windows", uaWin10, browser.ClientHints{}, model.DesktopWeb},
		{"hint mobile", "Mozilla/5.0", browser.ClientHints{Mobile: &mobile}, model.MobileWeb},
		{"hint desktop", "Mozilla/5.0", browser.ClientHints{Mobile: &desktop}, model.DesktopWeb},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectPlatform(tt.ua, tt.hints); got != tt.want {
				t.Errorf("DetectPlatform() = %s, want %s", got, tt.want)
			}
		})
	}
}
