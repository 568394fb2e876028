package renderer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LightCountToken is replaced by the number of lights in shader templates.
const LightCountToken = "LIGHT_NUM"

// ExpandLightCount substitutes every LightCountToken in src with n.
func ExpandLightCount(src string, n int) string {
	return strings.ReplaceAll(src, LightCountToken, strconv.Itoa(n))
}

// CachePath is where GenerateShader writes the expanded template.
func CachePath(templatePath string) string {
	return templatePath + ".cache"
}

// GenerateShader expands the template at templatePath for n lights, writes
// the result to CachePath(templatePath) and returns it. The cache file is
// left on disk so the exact source handed to the driver can be inspected.
func GenerateShader(templatePath string, n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("shader template %q: light count %d must be positive", templatePath, n)
	}
	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		return "", fmt.Errorf("read shader template: %w", err)
	}
	if !strings.Contains(string(tmpl), LightCountToken) {
		return "", fmt.Errorf("shader template %q has no %s placeholder", templatePath, LightCountToken)
	}

	src := ExpandLightCount(string(tmpl), n)
	if err := os.WriteFile(CachePath(templatePath), []byte(src), 0o644); err != nil {
		return "", fmt.Errorf("write shader cache: %w", err)
	}
	return src, nil
}
