// gen_vm_expects writes curried forms of the vmTestCase expect* builder
// methods, e.g. expectVMStack(1, 2) for vmt.expectStack(1, 2), so that
// expectations may be passed around as values to vmTestCase.apply.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/printer"
	"go/token"
	"io/ioutil"
	"log"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	recvType     = "vmTestCase"
	methodPrefix = "expect"
	curryPrefix  = "expectVM"
)

func main() {
	var (
		outName string
		timeout time.Duration
	)
	flag.StringVar(&outName, "o", "", "output file; defaults to stdout")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "time limit")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	code, err := run(ctx, outName, flag.Args())
	if err == nil {
		if outName == "" {
			_, err = os.Stdout.Write(code)
		} else {
			err = ioutil.WriteFile(outName, code, 0644)
		}
	}
	if err != nil {
		log.Fatalln(err)
	}
}

// source holds the expect methods found in one file, along with the
// imports that their parameter types may refer to.
type source struct {
	name    string
	methods []*ast.FuncDecl
	imports map[string]string
}

func run(ctx context.Context, outName string, names []string) ([]byte, error) {
	if len(names) == 0 {
		return nil, errors.New("no source files given")
	}

	fset := token.NewFileSet()
	sources := make([]source, len(names))
	eg, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		eg.Go(func() (err error) {
			sources[i], err = parseSource(ctx, fset, name)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var gen generator
	gen.fset = fset
	gen.header(outName, names)
	for _, src := range sources {
		for _, method := range src.methods {
			if err := gen.curry(src, method); err != nil {
				return nil, fmt.Errorf("%v: %w", src.name, err)
			}
		}
	}
	return gen.source()
}

func parseSource(ctx context.Context, fset *token.FileSet, name string) (src source, err error) {
	src.name = name
	f, err := parser.ParseFile(fset, name, nil, 0)
	if err != nil {
		return src, err
	}

	src.imports = make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return src, err
		}
		pkg := path.Base(importPath)
		if spec.Name != nil {
			pkg = spec.Name.Name
		}
		src.imports[pkg] = importPath
	}

	for _, decl := range f.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && isExpectMethod(fn) {
			src.methods = append(src.methods, fn)
		}
	}
	return src, ctx.Err()
}

// isExpectMethod matches func (vmt vmTestCase) expectX(...) vmTestCase
func isExpectMethod(fn *ast.FuncDecl) bool {
	if fn.Recv == nil || len(fn.Recv.List) != 1 || !isIdent(fn.Recv.List[0].Type, recvType) {
		return false
	}
	if !strings.HasPrefix(fn.Name.Name, methodPrefix) || len(fn.Name.Name) == len(methodPrefix) {
		return false
	}
	results := fn.Type.Results
	return results != nil && len(results.List) == 1 && isIdent(results.List[0].Type, recvType)
}

func isIdent(expr ast.Expr, name string) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == name
}

type generator struct {
	fset    *token.FileSet
	head    bytes.Buffer
	body    bytes.Buffer
	imports map[string]struct{}
}

func (gen *generator) header(outName string, names []string) {
	gen.head.WriteString("package main\n\n")
	fmt.Fprintf(&gen.head, "// @generated from %v\n\n", strings.Join(names, " "))
	if outName != "" {
		fmt.Fprintf(&gen.head, "//go:generate go run scripts/gen_vm_expects.go -o %v %v\n\n",
			outName, strings.Join(names, " "))
	}
}

func (gen *generator) curry(src source, fn *ast.FuncDecl) error {
	what := strings.TrimPrefix(fn.Name.Name, methodPrefix)

	var params, args []string
	for _, field := range fn.Type.Params.List {
		if err := gen.collectImports(src, field.Type); err != nil {
			return fmt.Errorf("%v: %w", fn.Name.Name, err)
		}
		var typ bytes.Buffer
		if err := printer.Fprint(&typ, gen.fset, field.Type); err != nil {
			return err
		}
		_, variadic := field.Type.(*ast.Ellipsis)
		var names []string
		for _, name := range field.Names {
			names = append(names, name.Name)
			if variadic {
				args = append(args, name.Name+"...")
			} else {
				args = append(args, name.Name)
			}
		}
		params = append(params, strings.Join(names, ", ")+" "+typ.String())
	}

	fmt.Fprintf(&gen.body, "func %v%v(%v) func(%v) %v {\n",
		curryPrefix, what, strings.Join(params, ", "), recvType, recvType)
	fmt.Fprintf(&gen.body, "\treturn func(vmt %v) %v {\n", recvType, recvType)
	fmt.Fprintf(&gen.body, "\t\treturn vmt.%v(%v)\n", fn.Name.Name, strings.Join(args, ", "))
	gen.body.WriteString("\t}\n}\n\n")
	return nil
}

// collectImports records the import of any package that typ refers to.
func (gen *generator) collectImports(src source, typ ast.Expr) (err error) {
	ast.Inspect(typ, func(node ast.Node) bool {
		sel, ok := node.(*ast.SelectorExpr)
		if !ok {
			return err == nil
		}
		if pkg, ok := sel.X.(*ast.Ident); ok {
			importPath, known := src.imports[pkg.Name]
			if !known {
				err = fmt.Errorf("unknown package %v", pkg.Name)
				return false
			}
			if gen.imports == nil {
				gen.imports = make(map[string]struct{})
			}
			gen.imports[importPath] = struct{}{}
		}
		return false
	})
	return err
}

func (gen *generator) source() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(gen.head.Bytes())

	paths := make([]string, 0, len(gen.imports))
	for importPath := range gen.imports {
		paths = append(paths, strconv.Quote(importPath))
	}
	sort.Strings(paths)
	switch len(paths) {
	case 0:
	case 1:
		fmt.Fprintf(&buf, "import %v\n\n", paths[0])
	default:
		fmt.Fprintf(&buf, "import (\n\t%v\n)\n\n", strings.Join(paths, "\n\t"))
	}

	buf.Write(gen.body.Bytes())
	return format.Source(buf.Bytes())
}
