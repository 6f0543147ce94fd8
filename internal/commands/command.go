package commands

import (
	"fmt"
	"strings"
)

type Type string

const (
	TypeAdd     Type = "add"
	TypeFilter  Type = "filter"
	TypeSort    Type = "sort"
	TypeClear   Type = "clear"
	TypeExport  Type = "export"
	TypeImport  Type = "import"
	TypeCleanup Type = "cleanup"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title    string
	Category string
	Priority string
	Due      string
}

type FilterArgs struct {
	Search   string
	Category string
	Priority string
	Status   string
}

type SortArgs struct {
	Key   string
	Order string
}

type ImportArgs struct {
	Path  string
	Merge bool
}

type ExportArgs struct {
	Path string
}

type Command struct {
	Type   Type
	Raw    string
	Add    *AddArgs
	Filter *FilterArgs
	Sort   *SortArgs
	Import *ImportArgs
	Export *ExportArgs
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	switch Type(head) {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeFilter:
		return parseFilter(input, args)
	case TypeSort:
		return parseSort(input, args)
	case TypeClear:
		return Command{Type: TypeClear, Raw: input}, nil
	case TypeExport:
		return parseExport(input, args)
	case TypeImport:
		return parseImport(input, args)
	case TypeCleanup:
		return Command{Type: TypeCleanup, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
}

// keyValue splits "cat:shopping" style tokens; the title is whatever is
// left over.
func keyValue(arg string) (string, string, bool) {
	idx := strings.Index(arg, ":")
	if idx <= 0 {
		return "", "", false
	}
	return strings.ToLower(arg[:idx]), arg[idx+1:], true
}

func parseAdd(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}

	add := AddArgs{}
	var titleWords []string
	for _, arg := range args {
		key, value, ok := keyValue(arg)
		if !ok {
			titleWords = append(titleWords, arg)
			continue
		}
		switch key {
		case "cat", "category":
			add.Category = value
		case "pri", "priority":
			add.Priority = value
		case "due":
			add.Due = value
		default:
			titleWords = append(titleWords, arg)
		}
	}

	add.Title = strings.TrimSpace(strings.Join(titleWords, " "))
	if add.Title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &add}, nil
}

func parseFilter(raw string, args []string) (Command, error) {
	filter := FilterArgs{}
	var searchWords []string
	for _, arg := range args {
		key, value, ok := keyValue(arg)
		if !ok {
			searchWords = append(searchWords, arg)
			continue
		}
		switch key {
		case "cat", "category":
			filter.Category = value
		case "pri", "priority":
			filter.Priority = value
		case "status":
			filter.Status = strings.ToLower(value)
		default:
			searchWords = append(searchWords, arg)
		}
	}
	filter.Search = strings.TrimSpace(strings.Join(searchWords, " "))
	return Command{Type: TypeFilter, Raw: raw, Filter: &filter}, nil
}

func parseSort(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "sort requires a key"}
	}
	sortArgs := SortArgs{Key: args[0]}
	if len(args) > 1 {
		order := strings.ToLower(args[1])
		if order != "asc" && order != "desc" {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown sort order: %s", args[1])}
		}
		sortArgs.Order = order
	}
	return Command{Type: TypeSort, Raw: raw, Sort: &sortArgs}, nil
}

func parseExport(raw string, args []string) (Command, error) {
	export := ExportArgs{}
	if len(args) > 0 {
		export.Path = args[0]
	}
	return Command{Type: TypeExport, Raw: raw, Export: &export}, nil
}

func parseImport(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "import requires a file path"}
	}
	imp := ImportArgs{Path: args[0]}
	for _, arg := range args[1:] {
		if strings.EqualFold(arg, "merge") {
			imp.Merge = true
		}
	}
	return Command{Type: TypeImport, Raw: raw, Import: &imp}, nil
}
