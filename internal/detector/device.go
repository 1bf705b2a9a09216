package detector

import (
	"regexp"
	"strings"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/browser"
	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// OSInfo is the operating system inferred from the user agent.
type OSInfo struct {
	OS      string `json:"os"`
	Version string `json:"version"`
}

// rule is one step of an ordered matching chain. The first rule whose
// pattern matches the user agent produces the result.
type rule[T any] struct {
	match   *regexp.Regexp
	extract func(ua string) T
}

func firstMatch[T any](rules []rule[T], ua string, fallback T) T {
	for _, r := range rules {
		if r.match.MatchString(ua) {
			return r.extract(ua)
		}
	}
	return fallback
}

// windowsVersions maps NT kernel versions to marketing names.
var windowsVersions = map[string]string{
	"10.0": "10/11",
	"6.3":  "8.1",
	"6.2":  "8",
	"6.1":  "7",
}

var (
	reAndroidVersion = regexp.MustCompile(`(?i)Android\s([\d.]+)`)
	reIOSVersion     = regexp.MustCompile(`(?i)OS\s([\d_]+)`)
	reMacVersion     = regexp.MustCompile(`(?i)Mac OS X\s([\d_]+)`)
	reWindowsVersion = regexp.MustCompile(`(?i)Windows NT\s([\d.]+)`)
	rePixelModel     = regexp.MustCompile(`(?i)Pixel\s[\w\s]+`)
	reSamsungModel   = regexp.MustCompile(`(?i)SM-[A-Z0-9]+`)
	reMobileUA       = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
)

var osRules = []rule[OSInfo]{
	{regexp.MustCompile(`(?i)Android`), func(ua string) OSInfo {
		return OSInfo{OS: "Android", Version: submatch(reAndroidVersion, ua)}
	}},
	{regexp.MustCompile(`(?i)iPhone|iPad|iPod`), func(ua string) OSInfo {
		return OSInfo{OS: "iOS", Version: underscoresToDots(submatch(reIOSVersion, ua))}
	}},
	{regexp.MustCompile(`(?i)Mac OS X`), func(ua string) OSInfo {
		return OSInfo{OS: "macOS", Version: underscoresToDots(submatch(reMacVersion, ua))}
	}},
	{regexp.MustCompile(`(?i)Windows NT`), func(ua string) OSInfo {
		nt := submatch(reWindowsVersion, ua)
		if name, ok := windowsVersions[nt]; ok {
			return OSInfo{OS: "Windows", Version: name}
		}
		return OSInfo{OS: "Windows", Version: nt}
	}},
	{regexp.MustCompile(`(?i)Linux`), func(string) OSInfo {
		return OSInfo{OS: "Linux", Version: model.Unknown}
	}},
}

// platformNames normalizes Sec-CH-UA-Platform values.
var platformNames = map[string]string{
	"android":   "Android",
	"ios":       "iOS",
	"macos":     "macOS",
	"mac os x":  "macOS",
	"windows":   "Windows",
	"linux":     "Linux",
	"chrome os": "ChromeOS",
	"chromeos":  "ChromeOS",
}

// DetectOS identifies the operating system and version from the user agent.
// The structured platform hint is only consulted when the user agent carries
// no known OS signature.
func DetectOS(ua string, hints browser.ClientHints) OSInfo {
	info := firstMatch(osRules, ua, OSInfo{OS: model.Unknown, Version: model.Unknown})
	if info.OS != model.Unknown {
		return info
	}

	name, ok := platformNames[strings.ToLower(strings.TrimSpace(hints.Platform))]
	if !ok {
		return info
	}
	version := strings.TrimSpace(hints.PlatformVersion)
	if version == "" {
		version = model.Unknown
	}
	return OSInfo{OS: name, Version: version}
}

var brandRules = []rule[string]{
	{regexp.MustCompile(`(?i)iPhone`), constant("Apple iPhone")},
	{regexp.MustCompile(`(?i)iPad`), constant("Apple iPad")},
	{regexp.MustCompile(`(?i)Pixel`), func(ua string) string {
		if m := rePixelModel.FindString(ua); m != "" {
			return "Google " + strings.TrimSpace(m)
		}
		return "Google Pixel"
	}},
	{reSamsungModel, func(ua string) string {
		return "Samsung " + reSamsungModel.FindString(ua)
	}},
	{regexp.MustCompile(`(?i)Samsung`), constant("Samsung")},
	{regexp.MustCompile(`(?i)HUAWEI`), constant("Huawei")},
	{regexp.MustCompile(`(?i)Xiaomi|Mi |Redmi`), constant("Xiaomi/Redmi")},
	{regexp.MustCompile(`(?i)OnePlus`), constant("OnePlus")},
	{regexp.MustCompile(`(?i)MOTO|Motorola`), constant("Motorola")},
	{regexp.MustCompile(`(?i)Nokia`), constant("Nokia")},
}

// DetectBrandModel returns a best-effort hardware brand/model.
// It is independent of DetectOS: a device can match on brand alone.
func DetectBrandModel(ua string) string {
	return firstMatch(brandRules, ua, model.Unknown)
}

// DetectPlatform classifies the client as mobile or desktop web.
func DetectPlatform(ua string, hints browser.ClientHints) model.Platform {
	if reMobileUA.MatchString(ua) {
		return model.MobileWeb
	}
	if hints.Mobile != nil && *hints.Mobile {
		return model.MobileWeb
	}
	return model.DesktopWeb
}

func submatch(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 || m[1] == "" {
		return model.Unknown
	}
	return m[1]
}

func underscoresToDots(v string) string {
	if v == model.Unknown {
		return v
	}
	return strings.ReplaceAll(v, "_", ".")
}

func constant(v string) func(string) string {
	return func(string) string { return v }
}
