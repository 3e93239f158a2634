package services

import (
	"github.com/deploymenttheory/go-sav/internal/parsers/dictionary"
	"github.com/deploymenttheory/go-sav/internal/types"
	"github.com/deploymenttheory/go-sav/internal/variables"
)

// readExtension dispatches a type 7 record on its subtype
func (s *Session) readExtension() error {
	r := s.reader

	subtype, err := dictionary.PeekSubtype(r)
	if err != nil {
		return err
	}

	switch subtype {
	case types.SubtypeMachineInteger:
		info, err := dictionary.ReadMachineIntegerInfo(r)
		if err != nil {
			return err
		}
		s.machineInt = info
		s.emit(info.Offset, types.RecordTypeExtension, subtype, "release %d.%d.%d, %s, %s, character code %d",
			info.ReleaseMajor, info.ReleaseMinor, info.ReleaseSpecial,
			info.FloatRepresentationLabel(), info.EndiannessLabel(), info.CharacterCode)

	case types.SubtypeMachineFloat:
		info, err := dictionary.ReadMachineFloatInfo(r)
		if err != nil {
			return err
		}
		s.machineFloat = info
		s.emit(info.Offset, types.RecordTypeExtension, subtype, "sysmis %g, highest %g, lowest %g", info.SysMiss, info.Highest, info.Lowest)

	case types.SubtypeVariableSets:
		sets, err := dictionary.ReadVariableSets(r)
		if err != nil {
			return err
		}
		s.variableSets = append(s.variableSets, sets)
		s.emit(sets.Offset, types.RecordTypeExtension, subtype, "%d bytes", len(sets.Text))

	case types.SubtypeDisplayParameters:
		params, err := dictionary.ReadDisplayParameters(r)
		if err != nil {
			return err
		}
		s.applyDisplayParameters(params)

	case types.SubtypeLongVariableNames:
		names, err := dictionary.ReadLongVariableNames(r)
		if err != nil {
			return err
		}
		if err := s.applyLongNames(names); err != nil {
			return err
		}

	case types.SubtypeVeryLongStrings:
		widths, err := dictionary.ReadVeryLongStrings(r)
		if err != nil {
			return err
		}
		s.applyVeryLongStrings(widths)

	case types.SubtypeCharacterEncoding:
		enc, err := dictionary.ReadCharacterEncoding(r)
		if err != nil {
			return err
		}
		s.encodingName = enc.Name
		s.emit(enc.Offset, types.RecordTypeExtension, subtype, "character set %s", enc.Name)

	case types.SubtypeLongStringValueLabels:
		labels, err := dictionary.ReadLongStringValueLabels(r)
		if err != nil {
			return err
		}
		if err := s.applyLongStringLabels(labels); err != nil {
			return err
		}

	default:
		ext, err := dictionary.ReadExtension(r)
		if err != nil {
			return err
		}
		s.extensions = append(s.extensions, ext)
		s.emit(ext.Offset, types.RecordTypeExtension, subtype, "%d x %d bytes skipped", ext.Count, ext.Size)
	}

	return nil
}

// applyDisplayParameters assigns parameters to variables positionally. Surplus
// parameters are ignored.
func (s *Session) applyDisplayParameters(params *types.DisplayParameters) {
	for i, p := range params.Variables {
		if i >= len(s.variables) {
			break
		}
		s.variables[i].SetDisplay(p)
	}
	s.emit(params.Offset, types.RecordTypeExtension, params.Subtype, "%d entries for %d variables", len(params.Variables), len(s.variables))
}

// applyLongNames renames variables and folds every variable without a long name
// into the preceding string variable as a segment
func (s *Session) applyLongNames(names *types.LongVariableNames) error {
	kept := make([]variables.Variable, 0, len(s.variables))
	var last variables.Variable

	for _, v := range s.variables {
		if long, ok := names.Lookup(v.ShortName()); ok {
			v.SetName(long)
			kept = append(kept, v)
			last = v
			continue
		}

		segment, ok := v.(*variables.StringVariable)
		if !ok {
			return types.Structural(opDictionary, names.Offset, "variable %s has no long name and is not a string segment", v.ShortName())
		}
		owner, ok := last.(*variables.StringVariable)
		if !ok {
			return types.Structural(opDictionary, names.Offset, "string segment %s does not follow a string variable", v.ShortName())
		}
		owner.AddSegment(segment)
	}

	for i, v := range kept {
		v.SetPosition(i + 1)
	}
	s.emit(names.Offset, types.RecordTypeExtension, names.Subtype, "%d long names, %d segments folded",
		len(names.Names), len(s.variables)-len(kept))
	s.variables = kept
	return nil
}

// applyVeryLongStrings sets the logical width of string variables by short name.
// Names that match no string variable are ignored.
func (s *Session) applyVeryLongStrings(widths *types.VeryLongStrings) {
	applied := 0
	for _, e := range widths.Entries {
		for _, v := range s.variables {
			if sv, ok := v.(*variables.StringVariable); ok && sv.ShortName() == e.Name {
				sv.SetWidth(e.Width)
				applied++
				break
			}
		}
	}
	s.emit(widths.Offset, types.RecordTypeExtension, widths.Subtype, "%d of %d widths applied", applied, len(widths.Entries))
}

// applyLongStringLabels merges labels into string variables found by long name
func (s *Session) applyLongStringLabels(labels *types.LongStringValueLabels) error {
	for _, set := range labels.Variables {
		var target *variables.StringVariable
		for _, v := range s.variables {
			if v.Name() == set.Name {
				sv, ok := v.(*variables.StringVariable)
				if !ok {
					return types.Structural(opDictionary, labels.Offset, "long string labels refer to numeric variable %s", set.Name)
				}
				target = sv
				break
			}
		}
		if target == nil {
			return types.Structural(opDictionary, labels.Offset, "long string labels refer to unknown variable %s", set.Name)
		}
		for _, l := range set.Labels {
			target.AddCategory(l.Value, l.Label)
		}
	}
	s.emit(labels.Offset, types.RecordTypeExtension, labels.Subtype, "labels for %d variables", len(labels.Variables))
	return nil
}
