package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"mwallet-gateway/internal/application"
	"mwallet-gateway/internal/domain/model"
	payAdapters "mwallet-gateway/internal/infra/adapters/payment"
	"mwallet-gateway/internal/infra/logging"
)

type initiateFlags struct {
	amount    int64
	mobile    string
	cnic      string
	ref       string
	bill      string
	desc      string
	returnURL string
	ppmpf     []string
	dryRun    bool
}

func newInitiateCommand(g *globalFlags) *cobra.Command {
	f := &initiateFlags{}
	cmd := &cobra.Command{
		Use:   "initiate",
		Short: "Initiate a mobile-wallet payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := f.request()
			if err != nil {
				return err
			}
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger := g.logger(cfg, cmd.ErrOrStderr())

			var opts []application.Option
			if f.dryRun {
				opts = append(opts, application.WithTransport(payAdapters.NewNoopTransport()))
			}
			svc, err := application.New(cmd.Context(), cfg, logger, opts...)
			if err != nil {
				return err
			}
			defer svc.Close()

			if f.dryRun {
				payload, url, err := svc.Gateway.InitiatePayload(req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"url":     url,
					"payload": logging.RedactFields(payload, g.dev),
				})
			}

			resp, err := svc.Payments.Initiate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&f.amount, "amount", 0, "amount in the smallest currency unit (paisa)")
	fl.StringVar(&f.mobile, "mobile", "", "payer wallet number")
	fl.StringVar(&f.cnic, "cnic", "", "last six digits of the payer CNIC")
	fl.StringVar(&f.ref, "ref", "", "transaction reference (generated when empty)")
	fl.StringVar(&f.bill, "bill", "", "bill reference (defaults to --ref)")
	fl.StringVar(&f.desc, "desc", "", "description (defaults to Payment)")
	fl.StringVar(&f.returnURL, "return-url", "", "send pp_ReturnURL with this value")
	fl.StringArrayVar(&f.ppmpf, "ppmpf", nil, "custom field as N=value, N in 1..5 (repeatable)")
	fl.BoolVar(&f.dryRun, "dry-run", false, "print the signed payload instead of sending it")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("cnic")
	return cmd
}

func (f *initiateFlags) request() (model.InitiateRequest, error) {
	req := model.InitiateRequest{
		Amount:         f.amount,
		MobileNumber:   f.mobile,
		CNICLast6:      f.cnic,
		TransactionRef: f.ref,
		BillReference:  f.bill,
		Description:    f.desc,
		ReturnURL:      f.returnURL,
	}
	if req.TransactionRef == "" {
		req.TransactionRef = "T" + ulid.Make().String()
	}
	for _, kv := range f.ppmpf {
		n, v, ok := strings.Cut(kv, "=")
		idx, err := strconv.Atoi(n)
		if !ok || err != nil || idx < 1 || idx > model.MaxCustomFields {
			return req, fmt.Errorf("--ppmpf %q must be N=value with N in 1..%d", kv, model.MaxCustomFields)
		}
		if req.Custom == nil {
			req.Custom = make(map[string]string)
		}
		req.Custom[model.CustomFieldName(idx)] = v
	}
	return req, nil
}
