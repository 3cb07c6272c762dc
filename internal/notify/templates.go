package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

// StoreInfo is what the mail templates need besides the order itself: store
// identity, the seller's transfer details and the proof-of-payment contact.
type StoreInfo struct {
	StoreName      string
	Bank           string
	Alias          string
	Holder         string
	WhatsAppNumber string
	WhatsAppLink   string
}

type lineView struct {
	Name      string
	Quantity  int
	UnitPrice float64
	Subtotal  float64
}

type orderMailData struct {
	Store        StoreInfo
	Order        *domain.Order
	Lines        []lineView
	MethodLabel  string
	ShippingName string
	HasLogo      bool
}

type dispatchMailData struct {
	Store        StoreInfo
	Order        *domain.Order
	Carrier      string
	TrackingCode string
	TrackingLink string
	HasLogo      bool
}

func orderData(store StoreInfo, o *domain.Order, hasLogo bool) orderMailData {
	lines := make([]lineView, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, lineView{
			Name:      l.ProductName,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Subtotal:  l.Subtotal(),
		})
	}
	shippingName := o.ShippingCarrier
	if shippingName == "" {
		shippingName = "Shipping"
	}
	return orderMailData{
		Store:        store,
		Order:        o,
		Lines:        lines,
		MethodLabel:  o.ShippingMethod.Label(),
		ShippingName: shippingName,
		HasLogo:      hasLogo,
	}
}

func renderConfirmation(store StoreInfo, o *domain.Order, hasLogo bool) (string, error) {
	return render(confirmationTmpl, orderData(store, o, hasLogo))
}

func renderSellerAlert(store StoreInfo, o *domain.Order, hasLogo bool) (string, error) {
	return render(sellerAlertTmpl, orderData(store, o, hasLogo))
}

func renderDispatchNotice(store StoreInfo, o *domain.Order, hasLogo bool) (string, error) {
	carrier := o.CarrierName
	if carrier == "" {
		carrier = "Not specified"
	}
	code := o.TrackingCode
	if code == "" {
		code = "Not available"
	}
	return render(dispatchTmpl, dispatchMailData{
		Store:        store,
		Order:        o,
		Carrier:      carrier,
		TrackingCode: code,
		TrackingLink: o.TrackingLink,
		HasLogo:      hasLogo,
	})
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", t.Name(), err)
	}
	return buf.String(), nil
}

var tmplFuncs = template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

// itemsTable is shared by the confirmation and the seller alert.
const itemsTableTmpl = `{{define "items"}}
<table width="100%" cellpadding="0" cellspacing="0" style="border-collapse:collapse;font-size:13px;color:#111827;">
  <thead>
    <tr style="background:#f3f4f6;">
      <th align="left" style="padding:8px 12px;border-bottom:1px solid #e5e7eb;">Product</th>
      <th align="center" style="padding:8px 12px;border-bottom:1px solid #e5e7eb;">Qty</th>
      <th align="right" style="padding:8px 12px;border-bottom:1px solid #e5e7eb;">Price</th>
      <th align="right" style="padding:8px 12px;border-bottom:1px solid #e5e7eb;">Subtotal</th>
    </tr>
  </thead>
  <tbody>
    {{range .Lines}}
    <tr>
      <td style="padding:8px 12px;border-bottom:1px solid #eee;">{{.Name}}</td>
      <td style="padding:8px 12px;text-align:center;border-bottom:1px solid #eee;">{{.Quantity}}</td>
      <td style="padding:8px 12px;text-align:right;border-bottom:1px solid #eee;">${{money .UnitPrice}}</td>
      <td style="padding:8px 12px;text-align:right;border-bottom:1px solid #eee;">${{money .Subtotal}}</td>
    </tr>
    {{end}}
  </tbody>
  <tfoot>
    {{if gt .Order.ShippingCost 0.0}}
    <tr>
      <td colspan="3" style="padding:12px;text-align:right;font-weight:bold;border-top:1px solid #e5e7eb;">{{.ShippingName}}{{if .MethodLabel}} ({{.MethodLabel}}){{end}}</td>
      <td style="padding:12px;text-align:right;font-weight:bold;border-top:1px solid #e5e7eb;">${{money .Order.ShippingCost}}</td>
    </tr>
    {{end}}
    <tr>
      <td colspan="3" style="padding:12px;text-align:right;font-weight:bold;border-top:2px solid #4f5d2f;">Total</td>
      <td style="padding:12px;text-align:right;font-weight:bold;border-top:2px solid #4f5d2f;">${{money .Order.Total}}</td>
    </tr>
  </tfoot>
</table>
{{end}}`

const headerTmpl = `{{define "header"}}
<td style="background:#4f5d2f;padding:16px 24px;color:#ffffff;">
  <table width="100%" cellpadding="0" cellspacing="0">
    <tr>
      <td align="left" style="vertical-align:middle;">
        <h1 style="margin:0;font-size:20px;">{{.Store.StoreName}}</h1>
      </td>
      {{if .HasLogo}}
      <td align="right" style="vertical-align:middle;">
        <img src="cid:logo.png" alt="{{.Store.StoreName}}" style="height:45px;border-radius:50%;">
      </td>
      {{end}}
    </tr>
  </table>
</td>
{{end}}`

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(tmplFuncs).Parse(headerTmpl + itemsTableTmpl + `
<html>
  <body style="margin:0;padding:0;background-color:#f8f9fa;font-family:Arial,Helvetica,sans-serif;">
    <table width="600" align="center" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
      <tr>{{template "header" .}}</tr>
      <tr>
        <td style="padding:24px 24px 8px;color:#111827;font-size:14px;">
          <p>Hi <strong>{{.Order.CustomerName}}</strong>,</p>
          <p>Thanks for your purchase at <strong>{{.Store.StoreName}}</strong>! These are the details of your order:</p>
        </td>
      </tr>
      <tr><td style="padding:0 24px 16px;">{{template "items" .}}</td></tr>
      <tr>
        <td style="padding:8px 24px;color:#111827;font-size:14px;">
          <p style="margin:0 0 8px;">To complete the payment, transfer <strong>${{money .Order.Total}}</strong> to:</p>
          <p style="margin:0;">
            <strong>Bank:</strong> {{.Store.Bank}}<br>
            <strong>Alias:</strong> {{.Store.Alias}}<br>
            <strong>Holder:</strong> {{.Store.Holder}}
          </p>
        </td>
      </tr>
      <tr>
        <td style="padding:8px 24px 16px;color:#111827;font-size:13px;">
          <p style="margin:8px 0;">Once the transfer is done, you can reply to this mail with the receipt, or send it via WhatsApp to <strong>{{.Store.WhatsAppNumber}}</strong>.</p>
          <p style="margin:0 0 8px;text-align:center;">
            <a href="{{.Store.WhatsAppLink}}" style="display:inline-block;padding:10px 18px;background-color:#4f5d2f;color:#ffffff;text-decoration:none;border-radius:4px;font-weight:bold;">Send receipt via WhatsApp</a>
          </p>
        </td>
      </tr>
      <tr>
        <td style="background:#f9fafb;padding:16px 24px;color:#6b7280;font-size:12px;text-align:center;">
          <p style="margin:0;">Questions? Just reply to this mail.</p>
        </td>
      </tr>
    </table>
  </body>
</html>`))

var sellerAlertTmpl = template.Must(template.New("seller_alert").Funcs(tmplFuncs).Parse(headerTmpl + itemsTableTmpl + `
<html>
  <body style="font-family:Arial,Helvetica,sans-serif;background:#f8f9fa;margin:0;padding:20px;">
    <table width="600" align="center" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
      <tr>{{template "header" .}}</tr>
      <tr>
        <td style="padding:20px 24px 12px;color:#111827;font-size:14px;">
          <p style="margin:0 0 6px;"><strong>New sale!</strong> Order #{{.Order.ID}} from <strong>{{.Order.CustomerName}}</strong> for <strong>${{money .Order.Total}}</strong>.</p>
          <p style="margin:0 0 10px;">Customer details:</p>
          <ul style="margin:0 0 10px 18px;padding:0;font-size:13px;">
            <li><strong>Name:</strong> {{.Order.CustomerName}}</li>
            <li><strong>Email:</strong> {{.Order.CustomerEmail}}</li>
            <li><strong>Phone:</strong> {{.Order.CustomerPhone}}</li>
            <li><strong>Address:</strong> {{.Order.CustomerAddress}}</li>
            <li><strong>Postal code:</strong> {{.Order.PostalCode}}</li>
            <li><strong>Shipping:</strong> {{.ShippingName}}{{if .MethodLabel}} ({{.MethodLabel}}){{end}} - ${{money .Order.ShippingCost}}</li>
          </ul>
        </td>
      </tr>
      <tr><td style="padding:0 24px 20px;">{{template "items" .}}</td></tr>
    </table>
  </body>
</html>`))

var dispatchTmpl = template.Must(template.New("dispatch").Funcs(tmplFuncs).Parse(headerTmpl + `
<html>
  <body style="font-family:Arial,Helvetica,sans-serif;background:#f8f9fa;margin:0;padding:20px;">
    <table width="600" align="center" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;overflow:hidden;">
      <tr>{{template "header" .}}</tr>
      <tr>
        <td style="padding:24px;color:#111827;">
          <p>Hi <strong>{{.Order.CustomerName}}</strong>,</p>
          <p>Your order <strong>#{{.Order.ID}}</strong> is on its way.</p>
          <div style="background:#f3f4f6;padding:16px;border-radius:8px;margin:20px 0;">
            <h3 style="margin-top:0;font-size:16px;">Shipment details</h3>
            <p style="margin:5px 0;"><strong>Carrier:</strong> {{.Carrier}}</p>
            <p style="margin:5px 0;"><strong>Tracking code:</strong> {{.TrackingCode}}</p>
            {{if .TrackingLink}}
            <p style="margin:10px 0;"><a href="{{.TrackingLink}}" style="display:inline-block;padding:10px 18px;background-color:#4f5d2f;color:#ffffff;text-decoration:none;border-radius:4px;font-weight:bold;">Track package</a></p>
            {{end}}
          </div>
          <p>If you have any questions, reply to this mail.</p>
          <p>Thanks for choosing {{.Store.StoreName}}!</p>
        </td>
      </tr>
    </table>
  </body>
</html>`))
