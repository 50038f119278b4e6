package authstatus

import (
	"context"

	"github.com/goliatone/go-authwidget/pkg/record"
	"github.com/goliatone/go-authwidget/pkg/widgets"
)

const (
	// Key is the registry key the widget is registered under.
	Key = "g2p_auth_id_oidc.reg_id_auth_status"
	// DisplayName is shown in designer tooling.
	DisplayName = "Authentication Status"
)

// SupportedTypes lists the field types the widget binds to.
var SupportedTypes = []record.FieldType{
	record.FieldTypeSelection,
	record.FieldTypeMany2One,
	record.FieldTypeChar,
}

// popupScript opens the provider popup in the browser, sized from the user's
// screen, for enabled authenticate buttons.
const popupScript = `document.addEventListener("click", function (event) {
  var button = event.target.closest('[data-widget="` + Key + `"] button[data-action="authenticate"][data-auth-link]');
  if (!button || button.disabled) { return; }
  window.open(button.getAttribute("data-auth-link"), "", "popup,height=" + (screen.height * 2) / 3 + ",width=" + screen.width / 2);
});`

// Descriptor returns the widget descriptor. base options apply to every
// instance; view options (statusClass, buttonClass) and the props locale are
// layered on top. A selection field bound to the widget becomes its status
// field.
func Descriptor(base ...OptionFn) widgets.Descriptor {
	return widgets.Descriptor{
		Key:            Key,
		DisplayName:    DisplayName,
		SupportedTypes: append([]record.FieldType(nil), SupportedTypes...),
		Scripts:        []widgets.Script{{Inline: popupScript}},
		Factory: func(ctx context.Context, props widgets.Props) (widgets.Widget, error) {
			fns := append([]OptionFn(nil), base...)
			if meta, ok := props.Record.Field(props.FieldName); ok && meta.Type == record.FieldTypeSelection {
				fns = append(fns, WithStatusField(props.FieldName))
			}
			if class := props.Option("statusClass"); class != "" {
				fns = append(fns, WithStatusClass(class))
			}
			if class := props.Option("buttonClass"); class != "" {
				fns = append(fns, WithButtonClass(class))
			}
			fns = append(fns, WithLocale(props.Locale))
			return New(ctx, props.Record, props.Caller, fns...), nil
		},
	}
}

// Register adds the widget to reg. Hosts call it once from their bootstrap
// code.
func Register(reg *widgets.Registry, base ...OptionFn) error {
	return reg.Register(Descriptor(base...))
}
