//go:build !integration

package payment_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"mwallet-gateway/internal/config"
	"mwallet-gateway/internal/domain"
	"mwallet-gateway/internal/domain/model"
	"mwallet-gateway/internal/domain/ports/adapter"
	jc "mwallet-gateway/internal/infra/adapters/payment"
	signer "mwallet-gateway/internal/infra/payment"
)

const testSalt = "testintegritysalt"

var fixedNow = time.Date(2023, 3, 15, 10, 5, 0, 0, time.UTC)

func testConfig() config.JazzCashConfig {
	return config.JazzCashConfig{
		Environment:       config.EnvironmentSandbox,
		APIVersion:        "2.0",
		Language:          "EN",
		Currency:          "PKR",
		DatetimeFormat:    "20060102150405",
		TransactionExpiry: time.Hour,
		Timeout:           30 * time.Second,
		Sandbox: config.Credentials{
			MerchantID:    "TESTMERCHANT123",
			Password:      "testpassword",
			IntegritySalt: testSalt,
			ReturnURL:     "https://merchant.test/jazzcash/callback",
			APIBaseURL:    "https://sandbox.jazzcash.com.pk/ApplicationAPI/API/",
		},
		Endpoints: config.EndpointsConfig{
			DoMobileWalletTransaction: "{version}/Purchase/DoMWalletTransaction",
			TransactionInquiry:        "{version}/Status/TransactionInquiry",
		},
	}
}

func newGateway(t *testing.T, cfg config.JazzCashConfig, tr adapter.Transport, logger *zerolog.Logger) *jc.JazzCashGateway {
	t.Helper()
	g, err := jc.NewJazzCashGateway(cfg, tr, logger, jc.WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatalf("NewJazzCashGateway: %v", err)
	}
	return g
}

func sentFields(t *testing.T, tr *jc.NoopTransport) (string, signer.Fields) {
	t.Helper()
	last, ok := tr.Last()
	if !ok {
		t.Fatal("expected a request to be sent")
	}
	var f signer.Fields
	if err := json.Unmarshal(last.Body, &f); err != nil {
		t.Fatalf("request body is not a flat string object: %v", err)
	}
	return last.URL, f
}

func basicRequest() model.InitiateRequest {
	return model.InitiateRequest{
		Amount:         1000,
		MobileNumber:   "03001234567",
		CNICLast6:      "123456",
		TransactionRef: "UNITTESTREF1",
		BillReference:  "BILL001",
		Description:    "Unit Test Payment",
	}
}

func TestEndpoint(t *testing.T) {
	cases := []struct{ base, tpl, want string }{
		{"https://sandbox.jazzcash.com.pk/ApplicationAPI/API/", "{version}/Purchase/DoMWalletTransaction",
			"https://sandbox.jazzcash.com.pk/ApplicationAPI/API/2.0/Purchase/DoMWalletTransaction"},
		{"https://h/API", "/{version}/Status/TransactionInquiry", "https://h/API/2.0/Status/TransactionInquiry"},
		{"https://h/API//", "//x", "https://h/API/x"},
	}
	for _, c := range cases {
		if got := jc.Endpoint(c.base, c.tpl, "2.0"); got != c.want {
			t.Errorf("Endpoint(%q, %q) = %q, want %q", c.base, c.tpl, got, c.want)
		}
	}
}

func TestInitiatePayment_SendsSignedPayload(t *testing.T) {
	tr := jc.NewNoopTransport()
	tr.Response = &adapter.TransportResponse{StatusCode: 200, Body: []byte(`{"pp_ResponseCode":"000","pp_Amount":1000}`)}
	g := newGateway(t, testConfig(), tr, nil)

	resp, err := g.InitiatePayment(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp["pp_ResponseCode"] != "000" {
		t.Errorf("response not returned verbatim: %v", resp)
	}
	if n, ok := resp["pp_Amount"].(json.Number); !ok || n.String() != "1000" {
		t.Errorf("numbers should keep their literal text, got %#v", resp["pp_Amount"])
	}

	url, f := sentFields(t, tr)
	if url != "https://sandbox.jazzcash.com.pk/ApplicationAPI/API/2.0/Purchase/DoMWalletTransaction" {
		t.Errorf("unexpected url %s", url)
	}
	want := map[string]string{
		"pp_Version":           "2.0",
		"pp_TxnType":           "MWALLET",
		"pp_Language":          "EN",
		"pp_MerchantID":        "TESTMERCHANT123",
		"pp_Password":          "testpassword",
		"pp_TxnRefNo":          "UNITTESTREF1",
		"pp_Amount":            "1000",
		"pp_TxnCurrency":       "PKR",
		"pp_TxnDateTime":       "20230315100500",
		"pp_TxnExpiryDateTime": "20230315110500",
		"pp_BillReference":     "BILL001",
		"pp_Description":       "Unit Test Payment",
		"pp_MobileNumber":      "03001234567",
		"pp_CNIC":              "123456",
	}
	hash := f[signer.SecureHashField]
	delete(f, signer.SecureHashField)
	if diff := cmp.Diff(want, map[string]string(f)); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if hash != signer.Sign(f, testSalt) {
		t.Errorf("secure hash does not match recomputed value")
	}
	for k, v := range f {
		if v == testSalt {
			t.Errorf("salt leaked in field %s", k)
		}
	}
}

func TestInitiatePayment_CustomFieldsMatchFixture(t *testing.T) {
	tr := jc.NewNoopTransport()
	g := newGateway(t, testConfig(), tr, nil)

	_, err := g.InitiatePayment(context.Background(), model.InitiateRequest{
		Amount:         2000,
		MobileNumber:   "03021234567",
		CNICLast6:      "112233",
		TransactionRef: "UNITTESTREF2",
		BillReference:  "BILL002",
		Description:    "Unit Test with ppmpf",
		Custom:         map[string]string{"ppmpf_1": "custom_val_1", "ppmpf_2": "", "ppmpf_3": "custom_val_3"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, f := sentFields(t, tr)
	if _, ok := f["ppmpf_2"]; ok {
		t.Error("empty custom field must be omitted")
	}
	if f["ppmpf_1"] != "custom_val_1" || f["ppmpf_3"] != "custom_val_3" {
		t.Errorf("custom fields not carried: %v", f)
	}
	if got, want := f[signer.SecureHashField], "1EEFEB39CC8C969A5E9ADD6A9D3BC824A596B4E7A8DFE3C1CC227AD6FE4F0D66"; got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestInitiatePayment_Defaults(t *testing.T) {
	tr := jc.NewNoopTransport()
	g := newGateway(t, testConfig(), tr, nil)

	req := basicRequest()
	req.BillReference, req.Description = "", ""
	if _, err := g.InitiatePayment(context.Background(), req); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	_, f := sentFields(t, tr)
	if f["pp_BillReference"] != "UNITTESTREF1" {
		t.Errorf("bill reference should default to txn ref, got %q", f["pp_BillReference"])
	}
	if f["pp_Description"] != "Payment" {
		t.Errorf("description should default to Payment, got %q", f["pp_Description"])
	}
	if _, ok := f["pp_ReturnURL"]; ok {
		t.Error("return url must be omitted by default")
	}
}

func TestInitiatePayment_ReturnURL(t *testing.T) {
	t.Run("from config when enabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.SendReturnURL = true
		tr := jc.NewNoopTransport()
		if _, err := newGateway(t, cfg, tr, nil).InitiatePayment(context.Background(), basicRequest()); err != nil {
			t.Fatal(err)
		}
		_, f := sentFields(t, tr)
		if f["pp_ReturnURL"] != "https://merchant.test/jazzcash/callback" {
			t.Errorf("expected configured return url, got %q", f["pp_ReturnURL"])
		}
		if f[signer.SecureHashField] != signer.Sign(f.Eligible(signer.SecureHashField), testSalt) {
			t.Error("return url must be covered by the hash")
		}
	})

	t.Run("per request override", func(t *testing.T) {
		tr := jc.NewNoopTransport()
		req := basicRequest()
		req.ReturnURL = "https://merchant.test/other"
		if _, err := newGateway(t, testConfig(), tr, nil).InitiatePayment(context.Background(), req); err != nil {
			t.Fatal(err)
		}
		_, f := sentFields(t, tr)
		if f["pp_ReturnURL"] != "https://merchant.test/other" {
			t.Errorf("expected request return url, got %q", f["pp_ReturnURL"])
		}
	})
}

func TestInitiatePayment_InvalidArgumentsSendNothing(t *testing.T) {
	cases := map[string]func(*model.InitiateRequest){
		"zero amount":    func(r *model.InitiateRequest) { r.Amount = 0 },
		"no mobile":      func(r *model.InitiateRequest) { r.MobileNumber = "" },
		"no cnic":        func(r *model.InitiateRequest) { r.CNICLast6 = "" },
		"no ref":         func(r *model.InitiateRequest) { r.TransactionRef = "" },
		"bad custom key": func(r *model.InitiateRequest) { r.Custom = map[string]string{"ppmpf_6": "x"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			tr := jc.NewNoopTransport()
			req := basicRequest()
			mutate(&req)
			_, err := newGateway(t, testConfig(), tr, nil).InitiatePayment(context.Background(), req)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if len(tr.Requests()) != 0 {
				t.Error("no request should be sent")
			}
		})
	}
}

func TestInitiatePayment_HTTPErrorStatus(t *testing.T) {
	tr := jc.NewNoopTransport()
	tr.Response = &adapter.TransportResponse{StatusCode: 400, Body: []byte(`{"error":"Bad Request"}`)}
	g := newGateway(t, testConfig(), tr, nil)

	_, err := g.InitiatePayment(context.Background(), basicRequest())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	ge, ok := domain.AsGatewayError(err)
	if !ok {
		t.Fatalf("expected *GatewayError, got %T", err)
	}
	if ge.StatusCode != 400 || ge.Operation != "Payment Initiation" {
		t.Errorf("unexpected error details: %+v", ge)
	}
	if ge.Response["error"] != "Bad Request" {
		t.Errorf("expected parsed error body, got %v", ge.Response)
	}
	if !strings.Contains(err.Error(), "Payment Initiation failed. Status: 400.") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestInitiatePayment_InvalidJSONIsProtocolError(t *testing.T) {
	for name, body := range map[string]string{
		"html":     "<html>oops</html>",
		"array":    `[1,2]`,
		"null":     "null",
		"trailing": `{"a":"b"} {"c":"d"}`,
	} {
		t.Run(name, func(t *testing.T) {
			tr := jc.NewNoopTransport()
			tr.Response = &adapter.TransportResponse{StatusCode: 200, Body: []byte(body)}
			_, err := newGateway(t, testConfig(), tr, nil).InitiatePayment(context.Background(), basicRequest())
			if !errors.Is(err, domain.ErrProtocol) || errors.Is(err, domain.ErrTransport) {
				t.Fatalf("expected protocol error, got %v", err)
			}
			ge, _ := domain.AsGatewayError(err)
			if ge.Operation != jc.OpInitiate || string(ge.Body) != body {
				t.Errorf("unexpected error details: %+v", ge)
			}
		})
	}
}

func TestInitiatePayment_TransportFailure(t *testing.T) {
	tr := jc.NewNoopTransport()
	tr.Err = errors.New("connection refused")
	_, err := newGateway(t, testConfig(), tr, nil).InitiatePayment(context.Background(), basicRequest())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	ge, _ := domain.AsGatewayError(err)
	if ge.StatusCode != 0 || ge.Err == nil {
		t.Errorf("expected cause without status, got %+v", ge)
	}
}

func TestInitiatePayment_CallerCancellation(t *testing.T) {
	tr := jc.NewNoopTransport()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGateway(t, testConfig(), tr, nil).InitiatePayment(ctx, basicRequest())
	if !errors.Is(err, domain.ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled transport error, got %v", err)
	}
}

func TestInitiatePayment_OverHTTP(t *testing.T) {
	var gotPath, gotCT, gotAccept string
	var gotBody map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotCT, gotAccept = r.URL.Path, r.Header.Get("Content-Type"), r.Header.Get("Accept")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pp_ResponseCode":"000","pp_TxnRefNo":"UNITTESTREF1"}`))
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Sandbox.APIBaseURL = srv.URL + "/ApplicationAPI/API/"
	g := newGateway(t, cfg, jc.NewHTTPTransportWithClient(srv.Client()), nil)

	resp, err := g.InitiatePayment(context.Background(), basicRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp["pp_TxnRefNo"] != "UNITTESTREF1" {
		t.Errorf("unexpected response %v", resp)
	}
	if gotPath != "/ApplicationAPI/API/2.0/Purchase/DoMWalletTransaction" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotCT != "application/json" || gotAccept != "application/json" {
		t.Errorf("unexpected headers %q %q", gotCT, gotAccept)
	}
	if gotBody["pp_MerchantID"] != "TESTMERCHANT123" || gotBody["pp_TxnType"] != "MWALLET" {
		t.Errorf("unexpected body %v", gotBody)
	}
}

func TestInitiatePayment_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.Sandbox.APIBaseURL = srv.URL
	g := newGateway(t, cfg, jc.NewHTTPTransportWithClient(srv.Client()), nil)

	_, err := g.InitiatePayment(context.Background(), basicRequest())
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", err)
	}
}

func TestQueryStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tr := jc.NewNoopTransport()
	g := newGateway(t, testConfig(), tr, &logger)

	if _, err := g.QueryStatus(context.Background(), "T100"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	url, f := sentFields(t, tr)
	if url != "https://sandbox.jazzcash.com.pk/ApplicationAPI/API/2.0/Status/TransactionInquiry" {
		t.Errorf("unexpected url %s", url)
	}
	want := map[string]string{
		"pp_MerchantID":  "TESTMERCHANT123",
		"pp_Password":    "testpassword",
		"pp_TxnRefNo":    "T100",
		"pp_Language":    "EN",
		"pp_TxnDateTime": "20230315100500",
	}
	hash := f[signer.SecureHashField]
	delete(f, signer.SecureHashField)
	if diff := cmp.Diff(want, map[string]string(f)); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
	if hash != signer.Sign(f, testSalt) {
		t.Error("secure hash does not match recomputed value")
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("expected a warning about the unconfirmed schema, got %q", buf.String())
	}

	if _, err := g.QueryStatus(context.Background(), ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty ref, got %v", err)
	}
}

func TestQueryStatus_ErrorNamesOperation(t *testing.T) {
	tr := jc.NewNoopTransport()
	tr.Response = &adapter.TransportResponse{StatusCode: 503, Body: []byte("unavailable")}
	_, err := newGateway(t, testConfig(), tr, nil).QueryStatus(context.Background(), "T100")
	ge, ok := domain.AsGatewayError(err)
	if !ok || ge.Operation != "Transaction Status Inquiry" || ge.StatusCode != 503 {
		t.Fatalf("unexpected error %v", err)
	}
	if ge.Response != nil {
		t.Errorf("non-JSON error body must not be parsed, got %v", ge.Response)
	}
}

func TestNewJazzCashGateway_RejectsIncompleteConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Sandbox.IntegritySalt = ""
	if _, err := jc.NewJazzCashGateway(cfg, jc.NewNoopTransport(), nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
