package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mustip/backend/internal/domain"
	"mustip/backend/internal/form"
)

var (
	submitFile     string
	submitEndpoint string
	submitTimeout  time.Duration
	submitFields   form.Fields
	submitReply    string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an inquiry",
	Long: `Submit an inquiry to the contact form API.

Fields can be given as flags, in a YAML file, or both. Flags take
precedence; the file fills whatever the flags leave empty.`,
	RunE: runSubmit,
}

func init() {
	flags := submitCmd.Flags()
	flags.StringVarP(&submitFile, "file", "f", "", "YAML file with inquiry fields")
	flags.StringVar(&submitEndpoint, "endpoint", "http://localhost:8080/api/contact", "contact API endpoint")
	flags.DurationVar(&submitTimeout, "timeout", 30*time.Second, "request timeout")
	flags.StringVar(&submitFields.Name, "name", "", "your name")
	flags.StringVar(&submitFields.Email, "email", "", "reply email address")
	flags.StringVar(&submitFields.Phone, "phone", "", "phone number")
	flags.StringVar(&submitFields.Category, "category", "", "inquiry category (see 'contactctl categories')")
	flags.StringVar(&submitReply, "reply", "", "preferred reply method (email or phone)")
	flags.StringVar(&submitFields.Message, "message", "", "inquiry text")
	flags.StringVar(&submitFields.Link, "link", "", "reference link")
	flags.BoolVar(&submitFields.Consent, "consent", false, "agree to the collection and use of personal information")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	fields := submitFields
	if submitReply != "" {
		fields.ReplyMethod = domain.ParseReplyMethod(submitReply)
	}

	if submitFile != "" {
		fromFile, err := loadFieldsFile(submitFile)
		if err != nil {
			return err
		}
		if err := mergeFields(&fields, fromFile); err != nil {
			return err
		}
		log.Debug("loaded fields from file", "file", submitFile)
	}

	ctrl := form.NewController(submitEndpoint, domain.ParseLocale(locale))
	ctrl.Update(func(f *form.Fields) {
		category := f.Category
		reply := f.ReplyMethod
		*f = fields
		if f.Category == "" {
			f.Category = category
		}
		if f.ReplyMethod == "" {
			f.ReplyMethod = reply
		}
	})

	if !ctrl.CanSubmit() {
		log.Warn("inquiry is incomplete", "fields", describeMissing(ctrl.Fields()))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), submitTimeout)
	defer cancel()

	log.Info("submitting inquiry", "endpoint", submitEndpoint, "category", ctrl.Fields().Category)
	status, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}

	switch status.State {
	case form.Success:
		log.Info(status.Message)
		if status.AutoReplyFailed {
			log.Warn("confirmation email could not be sent")
		}
		return nil
	default:
		log.Error("submission failed", "state", status.State, "message", status.Message)
		return fmt.Errorf("submission failed: %s", status.Message)
	}
}

// loadFieldsFile reads inquiry fields from a YAML file.
func loadFieldsFile(path string) (form.Fields, error) {
	var fields form.Fields
	data, err := os.ReadFile(path)
	if err != nil {
		return fields, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fields); err != nil {
		return fields, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return fields, nil
}

// mergeFields fills empty fields in dst from src. Values already set in dst win.
func mergeFields(dst *form.Fields, src form.Fields) error {
	if err := mergo.Merge(dst, src); err != nil {
		return fmt.Errorf("failed to merge fields: %w", err)
	}
	return nil
}

func describeMissing(f form.Fields) []string {
	var missing []string
	if f.Name == "" {
		missing = append(missing, "name")
	}
	if f.Email == "" || !domain.IsValidEmail(f.Email) {
		missing = append(missing, "email")
	}
	if f.Category == "" {
		missing = append(missing, "category")
	}
	if f.Message == "" {
		missing = append(missing, "message")
	}
	if !f.Consent {
		missing = append(missing, "consent")
	}
	return missing
}
