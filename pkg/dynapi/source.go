package dynapi

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/toyz/dynapi/internal/convert"
	"github.com/toyz/dynapi/internal/declparse"
	"github.com/toyz/dynapi/internal/errors"
)

// compileField turns a field declaration into a FieldDef
func (s *Session) compileField(src string) (*FieldDef, error) {
	decl, err := declparse.ParseField(src)
	if err != nil {
		return nil, errors.NewCompilationError(src, err)
	}

	typeName := decl.Type.String()
	t, err := s.pool.resolver.Resolve(typeName)
	if err != nil {
		return nil, err
	}
	if t == VoidType {
		return nil, errors.NewCompilationError(src, fmt.Errorf("field %s cannot be void", decl.Name))
	}

	f := &FieldDef{
		name:       decl.Name,
		typeName:   typeName,
		typ:        t,
		visibility: visibilityOf(decl),
	}
	if decl.Field.Init != nil {
		v, err := evalExpr(decl.Field.Init, constScope{})
		if err != nil {
			return nil, errors.NewCompilationError(src, err)
		}
		rv, err := convert.Assign(v, t)
		if err != nil {
			return nil, errors.NewCompilationError(src, err)
		}
		f.initial = rv
	}
	return f, nil
}

// compileMethod turns a method declaration into a MethodDef whose body
// interprets the parsed statements
func (s *Session) compileMethod(src string) (*MethodDef, error) {
	decl, err := declparse.ParseMethod(src)
	if err != nil {
		return nil, errors.NewCompilationError(src, err)
	}

	returnName := decl.Type.String()
	returns, err := s.pool.resolver.Resolve(returnName)
	if err != nil {
		return nil, err
	}

	m := &MethodDef{
		name:       decl.Name,
		returnName: returnName,
		returns:    returns,
		source:     src,
	}
	seen := make(map[string]bool)
	for _, p := range decl.Method.Params {
		if seen[p.Name] {
			return nil, errors.NewCompilationError(src, fmt.Errorf("duplicate parameter %s", p.Name))
		}
		seen[p.Name] = true

		name := p.Type.String()
		t, err := s.pool.resolver.Resolve(name)
		if err != nil {
			return nil, err
		}
		if t == VoidType {
			return nil, errors.NewCompilationError(src, fmt.Errorf("parameter %s cannot be void", p.Name))
		}
		m.params = append(m.params, &ParamDef{Name: p.Name, TypeName: name, Type: t})
	}

	for _, stmt := range decl.Method.Body {
		if stmt.Return != nil && stmt.Return.Value != nil && returns == VoidType {
			return nil, errors.NewCompilationError(src, fmt.Errorf("%s: void method %s returns a value", stmt.Pos, decl.Name))
		}
	}

	m.body = interpretedBody(s.logger, s.def.name, m, decl.Method.Body)
	return m, nil
}

func visibilityOf(decl *declparse.Declaration) Visibility {
	switch decl.Visibility() {
	case "public":
		return Public
	case "protected":
		return Protected
	default:
		return Private
	}
}

// interpretedBody executes statements in order until a return
func interpretedBody(logger *zap.Logger, typeName string, m *MethodDef, stmts []*declparse.Stmt) Body {
	params := m.Params()
	returns := m.returns
	name := m.name

	return func(receiver *Instance, args []any) (any, error) {
		scope := &callScope{receiver: receiver, params: make(map[string]any, len(params))}
		for i, p := range params {
			if i < len(args) {
				scope.params[p.Name] = args[i]
			}
		}

		for _, stmt := range stmts {
			switch {
			case stmt.Return != nil:
				if stmt.Return.Value == nil {
					return zeroResult(returns), nil
				}
				v, err := evalExpr(stmt.Return.Value, scope)
				if err != nil {
					return nil, err
				}
				return castResult(typeName, name, v, returns)

			case stmt.Print != nil:
				values := make([]any, len(stmt.Print.Args))
				for i, arg := range stmt.Print.Args {
					v, err := evalExpr(arg, scope)
					if err != nil {
						return nil, err
					}
					values[i] = v
				}
				logger.Info(strings.TrimSpace(fmt.Sprintln(values...)),
					zap.String("type", typeName),
					zap.String("method", name))

			case stmt.Assign != nil:
				v, err := evalExpr(stmt.Assign.Value, scope)
				if err != nil {
					return nil, err
				}
				if err := receiver.SetField(stmt.Assign.Field, v); err != nil {
					return nil, err
				}
			}
		}
		return zeroResult(returns), nil
	}
}

// scope resolves identifiers during evaluation
type scope interface {
	ident(name string) (any, error)
	field(name string) (any, error)
}

// constScope is used for field initializers, which may only hold literals
type constScope struct{}

func (constScope) ident(name string) (any, error) {
	return nil, fmt.Errorf("undefined: %s", name)
}

func (constScope) field(name string) (any, error) {
	return nil, fmt.Errorf("this.%s is not available in an initializer", name)
}

type callScope struct {
	receiver *Instance
	params   map[string]any
}

// ident resolves parameters before fields
func (s *callScope) ident(name string) (any, error) {
	if v, ok := s.params[name]; ok {
		return v, nil
	}
	return s.field(name)
}

func (s *callScope) field(name string) (any, error) {
	return s.receiver.Field(name)
}

func evalExpr(e *declparse.Expr, sc scope) (any, error) {
	acc, err := evalTerm(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Right {
		rhs, err := evalTerm(t, sc)
		if err != nil {
			return nil, err
		}
		if acc, err = add(acc, rhs); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func evalTerm(t *declparse.Term, sc scope) (any, error) {
	switch {
	case t.String != nil:
		return *t.String, nil
	case t.Float != nil:
		return *t.Float, nil
	case t.Int != nil:
		return *t.Int, nil
	case t.Bool != nil:
		return *t.Bool == "true", nil
	case t.Null:
		return nil, nil
	case t.Field != nil:
		return sc.field(*t.Field)
	case t.Ident != nil:
		return sc.ident(*t.Ident)
	case t.Group != nil:
		return evalExpr(t.Group, sc)
	}
	return nil, fmt.Errorf("empty expression")
}

// add concatenates when either side is a string and adds numbers otherwise
func add(a, b any) (any, error) {
	_, as := a.(string)
	_, bs := b.(string)
	if as || bs {
		return fmt.Sprint(a) + fmt.Sprint(b), nil
	}

	ai, af, aFloat, aok := number(a)
	bi, bf, bFloat, bok := number(b)
	if !aok || !bok {
		return nil, fmt.Errorf("cannot add %T and %T", a, b)
	}
	if aFloat || bFloat {
		return af + bf, nil
	}
	return ai + bi, nil
}

func number(v any) (int64, float64, bool, bool) {
	if v == nil {
		return 0, 0, false, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), float64(rv.Int()), false, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint()), float64(rv.Uint()), false, true
	case reflect.Float32, reflect.Float64:
		return int64(rv.Float()), rv.Float(), true, true
	}
	return 0, 0, false, false
}
