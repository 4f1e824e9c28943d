package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtensionID(t *testing.T) {
	tests := []struct {
		name string
		ext  Extension
		want string
	}{
		{"simple", Extension{Publisher: "pub", Name: "ext"}, "pub.ext"},
		{"case preserved", Extension{Publisher: "MS-VSCode", Name: "CSharp"}, "MS-VSCode.CSharp"},
		{"dotted name", Extension{Publisher: "redhat", Name: "vscode.yaml"}, "redhat.vscode.yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtensionID(&tt.ext))
		})
	}
}

func TestExtensionIDIsCaseSensitive(t *testing.T) {
	a := &Extension{Publisher: "pub", Name: "ext"}
	b := &Extension{Publisher: "Pub", Name: "ext"}
	assert.NotEqual(t, ExtensionID(a), ExtensionID(b))
}

func TestFileName(t *testing.T) {
	ext := &Extension{Publisher: "ms-vscode", Name: "csharp", Version: "1.2.3"}
	assert.Equal(t, "ms-vscode.csharp-1.2.3.vsix", ext.FileName())
}
