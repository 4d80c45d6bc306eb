package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hemascan/internal/backendsync"
	"hemascan/internal/blob"
	"hemascan/internal/capture"
	"hemascan/internal/pipeline"
	"hemascan/internal/providers"
	"hemascan/internal/scan"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		ownerID     string
		subjectPath string
		subjectName string
		age         int
		gender      string
		region      string
	)

	cmd := &cobra.Command{
		Use:   "scan [image files...]",
		Short: "Analyze a set of scan photos and store the result",
		Long: `Analyze one to five photos through the provider fallback chain and persist
the screening result. With exactly five photos they are treated as the guided
capture order (face, tongue, conjunctiva, palm, nails); fewer photos run as a
bulk submission without slot labels.`,
		Args: cobra.RangeArgs(1, scan.SlotCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if strings.TrimSpace(ownerID) == "" {
				return fmt.Errorf("scan: %w (set --owner)", pipeline.ErrAuthenticationRequired)
			}

			subject, err := loadSubject(subjectPath, subjectName, age, gender, region)
			if err != nil {
				return err
			}

			images := make([][]byte, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image %s: %w", path, err)
				}
				images = append(images, data)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			chain, err := providers.BuildChain(cfg)
			if err != nil {
				return err
			}
			manager := providers.NewManager(chain, logger)
			orchestrator := pipeline.NewOrchestrator(
				store,
				blob.NewFilesystemStore(cfg),
				backendsync.NewService(cfg),
				cfg.Corpus,
				logger,
			)
			task := pipeline.NewTask(manager, orchestrator, strings.TrimSpace(ownerID), logger)

			session := capture.NewSession(task, logger)
			if err := session.SetSubject(subject); err != nil {
				return err
			}

			runCtx := cmd.Context()
			if len(images) == scan.SlotCount {
				if _, err := session.Start(); err != nil {
					return err
				}
				for _, data := range images {
					if _, err := session.SubmitImage(runCtx, data); err != nil {
						return err
					}
				}
			} else {
				if _, err := session.SubmitBulk(runCtx, images); err != nil {
					return err
				}
			}

			state := session.Wait(runCtx)
			out := cmd.OutOrStdout()
			switch state.Phase {
			case capture.PhaseResult:
				printRecord(out, *state.Record)
				return nil
			case capture.PhaseError:
				return fmt.Errorf("scan failed: %s", state.Message)
			default:
				return fmt.Errorf("scan interrupted before completion")
			}
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner identity the record is stored under (required)")
	cmd.Flags().StringVar(&subjectPath, "subject", "", "Path to a JSON file with full subject details")
	cmd.Flags().StringVar(&subjectName, "name", "", "Subject name")
	cmd.Flags().IntVar(&age, "age", 0, "Subject age in years")
	cmd.Flags().StringVar(&gender, "gender", "", "Subject gender")
	cmd.Flags().StringVar(&region, "region", "", "Subject region")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func loadSubject(path, name string, age int, gender, region string) (scan.Subject, error) {
	var subject scan.Subject
	if trimmed := strings.TrimSpace(path); trimmed != "" {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return subject, fmt.Errorf("read subject file: %w", err)
		}
		if err := json.Unmarshal(data, &subject); err != nil {
			return subject, fmt.Errorf("parse subject file: %w", err)
		}
	}
	if name != "" {
		subject.Name = name
	}
	if age > 0 {
		subject.Age = age
	}
	if gender != "" {
		subject.Gender = gender
	}
	if region != "" {
		subject.Region = region
	}
	return subject.Normalized(), nil
}
