package workspace

import (
	"fmt"
	"strings"

	"github.com/hpungsan/lapak/internal/errors"
)

// Theme values.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Lang values.
const (
	LangID = "id"
	LangEN = "en"
)

// DefaultMessageTemplate is the WhatsApp order message. {{product}}, {{qty}}
// and {{total}} are substituted at checkout.
const DefaultMessageTemplate = "Halo, saya ingin beli {{product}} ({{qty}}x) total {{total}}."

// Settings is the flat workspace configuration read by the exporter.
// Logo, Favicon and QRISImage hold media ids.
type Settings struct {
	BrandName  string `json:"brand_name" yaml:"brand_name"`
	Domain     string `json:"domain" yaml:"domain"`
	Workspace  string `json:"workspace" yaml:"workspace"`
	Theme      string `json:"theme" yaml:"theme"`
	Lang       string `json:"lang" yaml:"lang"`
	Logo       string `json:"logo" yaml:"logo"`
	Favicon    string `json:"favicon" yaml:"favicon"`
	WANumber   string `json:"wa_number" yaml:"wa_number"`
	WATemplate string `json:"wa_template" yaml:"wa_template"`
	BankInfo   string `json:"bank_info" yaml:"bank_info"`
	QRISID     string `json:"qris_id" yaml:"qris_id"`
	QRISImage  string `json:"qris_image" yaml:"qris_image"`
}

// DefaultSettings returns the settings of a fresh workspace.
func DefaultSettings() Settings {
	return Settings{
		BrandName:  "Page Builder",
		Workspace:  "default",
		Theme:      ThemeDark,
		Lang:       LangID,
		WATemplate: DefaultMessageTemplate,
	}
}

// Validate checks the enumerated fields.
func (s Settings) Validate() error {
	if s.Theme != ThemeDark && s.Theme != ThemeLight {
		return errors.NewInvalidRequest(fmt.Sprintf("theme must be %q or %q, got %q", ThemeDark, ThemeLight, s.Theme))
	}
	if s.Lang != LangID && s.Lang != LangEN {
		return errors.NewInvalidRequest(fmt.Sprintf("lang must be %q or %q, got %q", LangID, LangEN, s.Lang))
	}
	if strings.TrimSpace(s.Workspace) == "" {
		return errors.NewInvalidRequest("workspace is required")
	}
	return nil
}

// SettingsPatch is a partial update; nil fields are left unchanged.
type SettingsPatch struct {
	BrandName  *string `json:"brand_name,omitempty" yaml:"brand_name,omitempty"`
	Domain     *string `json:"domain,omitempty" yaml:"domain,omitempty"`
	Theme      *string `json:"theme,omitempty" yaml:"theme,omitempty"`
	Lang       *string `json:"lang,omitempty" yaml:"lang,omitempty"`
	Logo       *string `json:"logo,omitempty" yaml:"logo,omitempty"`
	Favicon    *string `json:"favicon,omitempty" yaml:"favicon,omitempty"`
	WANumber   *string `json:"wa_number,omitempty" yaml:"wa_number,omitempty"`
	WATemplate *string `json:"wa_template,omitempty" yaml:"wa_template,omitempty"`
	BankInfo   *string `json:"bank_info,omitempty" yaml:"bank_info,omitempty"`
	QRISID     *string `json:"qris_id,omitempty" yaml:"qris_id,omitempty"`
	QRISImage  *string `json:"qris_image,omitempty" yaml:"qris_image,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.BrandName == nil && p.Domain == nil && p.Theme == nil && p.Lang == nil &&
		p.Logo == nil && p.Favicon == nil && p.WANumber == nil && p.WATemplate == nil &&
		p.BankInfo == nil && p.QRISID == nil && p.QRISImage == nil
}

// Apply returns s with the patch's fields overlaid.
func (p SettingsPatch) Apply(s Settings) Settings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.BrandName, p.BrandName)
	set(&s.Domain, p.Domain)
	set(&s.Theme, p.Theme)
	set(&s.Lang, p.Lang)
	set(&s.Logo, p.Logo)
	set(&s.Favicon, p.Favicon)
	set(&s.WANumber, p.WANumber)
	set(&s.BankInfo, p.BankInfo)
	set(&s.QRISID, p.QRISID)
	set(&s.QRISImage, p.QRISImage)
	// Template whitespace is part of the message.
	if p.WATemplate != nil {
		s.WATemplate = *p.WATemplate
	}
	s.Theme = strings.ToLower(s.Theme)
	s.Lang = strings.ToLower(s.Lang)
	return s
}
