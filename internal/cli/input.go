package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/safephase/pkg/conflict"
	sperrors "github.com/matzehuels/safephase/pkg/errors"
	pkgio "github.com/matzehuels/safephase/pkg/io"
	"github.com/matzehuels/safephase/pkg/netxml"
	"github.com/matzehuels/safephase/pkg/phase"
	"github.com/matzehuels/safephase/pkg/pipeline"
)

// inputFlags selects a conflict matrix: a junction of a network file given
// as argument, or a matrix JSON file.
type inputFlags struct {
	junction string
	matrix   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.junction, "junction", "j", "", "junction ID in the network file")
	cmd.Flags().StringVarP(&f.matrix, "matrix", "m", "", "matrix JSON file instead of a network")
}

// options fills the input fields of pipeline options.
func (f *inputFlags) options(args []string, opts *pipeline.Options) error {
	if err := f.check(args); err != nil {
		return err
	}
	if len(args) == 1 {
		opts.NetFile = args[0]
	}
	opts.MatrixFile = f.matrix
	opts.Junction = f.junction
	return nil
}

// load reads the selected matrix directly, bypassing the pipeline.
func (f *inputFlags) load(args []string) (phase.Junction, *conflict.Matrix, error) {
	if err := f.check(args); err != nil {
		return phase.Junction{}, nil, err
	}
	if f.matrix != "" {
		doc, err := pkgio.ImportMatrix(f.matrix)
		if err != nil {
			return phase.Junction{}, nil, err
		}
		if f.junction != "" {
			doc.Junction.ID = f.junction
		}
		return doc.Junction, doc.Matrix, nil
	}

	net, err := netxml.Load(args[0])
	if err != nil {
		return phase.Junction{}, nil, err
	}
	j, err := net.Junction(f.junction)
	if err != nil {
		return phase.Junction{}, nil, err
	}
	m, err := j.FoeMatrix()
	if err != nil {
		return phase.Junction{}, nil, err
	}
	return j.Declaration(), m, nil
}

func (f *inputFlags) check(args []string) error {
	switch {
	case f.matrix != "" && len(args) > 0:
		return sperrors.New(sperrors.ErrCodeInvalidInput, "--matrix and a network file are mutually exclusive")
	case f.matrix == "" && len(args) == 0:
		return sperrors.New(sperrors.ErrCodeInvalidInput, "a network file or --matrix is required")
	case f.matrix == "" && f.junction == "":
		return sperrors.New(sperrors.ErrCodeInvalidInput, "--junction is required with a network file")
	}
	return nil
}
