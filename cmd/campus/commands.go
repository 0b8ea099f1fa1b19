package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/infocampus/campus/authz"
	"github.com/infocampus/campus/chat"
	"github.com/infocampus/campus/client"
	"github.com/infocampus/campus/models"
	"github.com/infocampus/campus/services/academic"
	"github.com/infocampus/campus/session"
	"github.com/infocampus/campus/views"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("no active session, run: campus login -username USER")
	errBlocked     = errors.New("download blocked while the account is in arrears")
)

const chatExit = "/salir"

// campusService is the part of academic.Service the commands call
type campusService interface {
	views.DashboardSource
	Login(ctx context.Context, req academic.LoginRequest) (*models.Principal, error)
	Profile(ctx context.Context, token string) (*models.Principal, error)
	AccountStatement(ctx context.Context) ([]byte, error)
	SectionGrades(ctx context.Context, sectionID int64) (*academic.GradeSheet, error)
	SubmitGrade(ctx context.Context, enrollmentID int64, grade academic.GradeSubmission) (*academic.GradeResult, error)
	RegisterPayment(ctx context.Context, studentID int64) (*academic.PaymentReceipt, error)
	Subjects(ctx context.Context) ([]academic.Subject, error)
	Student(ctx context.Context, id int64) (*academic.StudentRecord, error)
	CloseCycle(ctx context.Context) (*academic.CycleClosure, error)
}

type commandLine struct {
	out      io.Writer
	in       *bufio.Reader
	store    *session.Store
	svc      campusService
	gate     *authz.Gate
	sender   chat.Sender
	chatOpts chat.Options
	logger   *zap.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USER             - log in, the password is prompted next")
	fmt.Fprintln(cli.out, "  logout                           - end the session")
	fmt.Fprintln(cli.out, "  whoami [-refresh]                - show the current user")
	fmt.Fprintln(cli.out, "  dashboard                        - show the role dashboard")
	fmt.Fprintln(cli.out, "  open PATH                        - open a view, e.g. /notas or /estudiante/12")
	fmt.Fprintln(cli.out, "  menu                             - list the views available to your role")
	fmt.Fprintln(cli.out, "  chat                             - talk to the academic assistant")
	fmt.Fprintln(cli.out, "  grade ENROLLMENT GRADE           - record a final grade (0-10)")
	fmt.Fprintln(cli.out, "  pay STUDENT                      - register a student's pending payments")
	fmt.Fprintln(cli.out, "  statement [-o FILE]              - save the account statement PDF")
	fmt.Fprintln(cli.out, "  close-cycle [-yes]               - close the active academic term")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginUname := loginCmd.String("username", "", "The username or id number. The password will be prompted next.")
	whoamiCmd := flag.NewFlagSet("whoami", flag.ContinueOnError)
	whoamiRefresh := whoamiCmd.Bool("refresh", false, "Reload the profile from the server.")
	statementCmd := flag.NewFlagSet("statement", flag.ContinueOnError)
	statementOut := statementCmd.String("o", "estado_cuenta.pdf", "Output file.")
	closeCmd := flag.NewFlagSet("close-cycle", flag.ContinueOnError)
	closeYes := closeCmd.Bool("yes", false, "Do not ask for confirmation.")
	for _, fs := range []*flag.FlagSet{loginCmd, whoamiCmd, statementCmd, closeCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginUname, string(pwd))

	case "logout":
		return cli.logout()

	case "whoami":
		if err := whoamiCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.whoami(ctx, *whoamiRefresh)

	case "dashboard":
		return cli.dashboard(ctx)

	case "open":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.open(ctx, args[2])

	case "menu":
		return cli.menu()

	case "chat":
		return cli.chat(ctx)

	case "grade":
		if len(args) < 4 {
			cli.printUsage()
			return errHelp
		}
		enrollmentID, err := parseID(args[2])
		if err != nil {
			return err
		}
		grade, err := strconv.ParseFloat(strings.Replace(args[3], ",", ".", 1), 64)
		if err != nil {
			return fmt.Errorf("grade must be a number (got '%s')", args[3])
		}
		return cli.grade(ctx, enrollmentID, grade)

	case "pay":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		studentID, err := parseID(args[2])
		if err != nil {
			return err
		}
		return cli.pay(ctx, studentID)

	case "statement":
		if err := statementCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.statement(ctx, *statementOut)

	case "close-cycle":
		if err := closeCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.closeCycle(ctx, *closeYes)

	default:
		cli.printUsage()
		return errHelp
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive number (got '%s')", s)
	}
	return id, nil
}

func (cli *commandLine) requireSession() (*models.Principal, error) {
	state := cli.store.State()
	if !state.Authenticated() {
		return nil, errNotLoggedIn
	}
	return state.Principal, nil
}

func (cli *commandLine) login(ctx context.Context, username, password string) error {
	p, err := cli.svc.Login(ctx, academic.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}
	if err := cli.store.Login(p); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Bienvenido, %s.\n", p.FullName())
	fmt.Fprintln(cli.out, "Ejecuta 'campus dashboard' para ver tu panel.")
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.store.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Sesión cerrada.")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context, refresh bool) error {
	p, err := cli.requireSession()
	if err != nil {
		return err
	}
	if refresh {
		updated, err := cli.svc.Profile(ctx, p.BearerToken)
		if err != nil {
			return err
		}
		if err := cli.store.Login(updated); err != nil {
			return err
		}
		p = updated
	}
	views.Header(cli.out, p)
	fmt.Fprintf(cli.out, "Usuario: %s\n", p.Username)
	return nil
}

func (cli *commandLine) dashboard(ctx context.Context) error {
	d, err := views.Dashboard(ctx, cli.out, cli.store.State(), cli.svc)
	if err != nil {
		return err
	}
	if d.ToLogin {
		return errNotLoggedIn
	}
	return nil
}

func (cli *commandLine) menu() error {
	p, err := cli.requireSession()
	if err != nil {
		return err
	}
	views.RenderMenu(cli.out, views.Menu(p.Role))
	return nil
}

// open guards path through the gate and renders its view. A redirect to the
// dashboard renders the dashboard instead.
func (cli *commandLine) open(ctx context.Context, path string) error {
	state := cli.store.State()
	decision := cli.gate.Decide(state, path)
	cli.logger.Debug("navigation", zap.String("path", path), zap.Stringer("outcome", decision.Outcome))

	switch decision.Outcome {
	case authz.Suspend:
		return nil
	case authz.Redirect:
		if decision.Target == authz.LoginPath {
			return errNotLoggedIn
		}
		fmt.Fprintf(cli.out, "Redirigido a %s\n\n", decision.Target)
		return cli.dashboard(ctx)
	}

	p := state.Principal
	if p.Role == models.RoleStudent && p.IsBlocked() && path != "/estado-cuenta" {
		views.Blocked(cli.out, p)
		return nil
	}
	return cli.renderPath(ctx, p, path)
}

func (cli *commandLine) renderPath(ctx context.Context, p *models.Principal, path string) error {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	switch segments[0] {
	case "dashboard":
		return cli.dashboard(ctx)

	case "notas", "horarios":
		enrollments, err := cli.svc.MyEnrollments(ctx)
		if err != nil {
			return err
		}
		if segments[0] == "notas" {
			views.GradeReport(cli.out, enrollments)
		} else {
			views.Schedule(cli.out, enrollments)
		}

	case "estado-cuenta":
		views.AccountStatement(cli.out, p)

	case "secciones":
		dash, err := cli.svc.TeacherDashboard(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Mis Secciones")
		views.Sections(cli.out, dash.Classes)

	case "gestion-notas":
		id, err := parseID(segments[1])
		if err != nil {
			return err
		}
		sheet, err := cli.svc.SectionGrades(ctx, id)
		if err != nil {
			return err
		}
		views.GradeSheet(cli.out, sheet)

	case "validar-pagos", "lista-mora":
		dash, err := cli.svc.FinanceDashboard(ctx)
		if err != nil {
			return err
		}
		views.Debtors(cli.out, dash.Collections)

	case "estudiante":
		id, err := parseID(segments[1])
		if err != nil {
			return err
		}
		record, err := cli.svc.Student(ctx, id)
		if err != nil {
			return err
		}
		views.StudentRecord(cli.out, record)

	case "malla-curricular":
		subjects, err := cli.svc.Subjects(ctx)
		if err != nil {
			return err
		}
		views.Subjects(cli.out, subjects)

	default:
		return fmt.Errorf("no view for %s", path)
	}
	return nil
}

func (cli *commandLine) chat(ctx context.Context) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}

	w := chat.NewWidget(cli.sender, cli.chatOpts, cli.logger)
	w.Open()
	defer w.Close()

	for _, e := range w.Entries() {
		fmt.Fprintf(cli.out, "Esmeralda: %s\n", e.Content)
	}
	fmt.Fprintf(cli.out, "(escribe %s para terminar)\n", chatExit)

	for {
		fmt.Fprint(cli.out, "> ")
		line, err := cli.in.ReadString('\n')
		input := strings.TrimSpace(line)
		if input == chatExit {
			return nil
		}
		if input != "" {
			cli.submit(ctx, w, input)
		}
		if err != nil {
			fmt.Fprintln(cli.out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (cli *commandLine) submit(ctx context.Context, w *chat.Widget, input string) {
	entry, err := w.Submit(ctx, input)
	switch {
	case errors.Is(err, chat.ErrTooLong):
		fmt.Fprintf(cli.out, "El mensaje es demasiado largo (máximo %d caracteres).\n", cli.maxInput())
		return
	case errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrClosed):
		return
	}
	fmt.Fprintf(cli.out, "Esmeralda: %s\n", entry.Content)
	if errors.Is(err, chat.ErrUnauthenticated) {
		fmt.Fprintln(cli.out, "Ejecuta 'campus login' para continuar.")
	}
}

func (cli *commandLine) maxInput() int {
	if cli.chatOpts.MaxInput > 0 {
		return cli.chatOpts.MaxInput
	}
	return chat.DefaultMaxInput
}

func (cli *commandLine) grade(ctx context.Context, enrollmentID int64, grade float64) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	res, err := cli.svc.SubmitGrade(ctx, enrollmentID, academic.GradeSubmission{FinalGrade: grade})
	if err != nil {
		return err
	}
	views.GradeResult(cli.out, res)
	return nil
}

func (cli *commandLine) pay(ctx context.Context, studentID int64) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	receipt, err := cli.svc.RegisterPayment(ctx, studentID)
	if err != nil {
		return err
	}
	views.PaymentReceipt(cli.out, receipt)
	return nil
}

func (cli *commandLine) statement(ctx context.Context, out string) error {
	p, err := cli.requireSession()
	if err != nil {
		return err
	}
	if p.IsBlocked() {
		return errBlocked
	}
	data, err := cli.svc.AccountStatement(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}
	fmt.Fprintf(cli.out, "Estado de cuenta guardado en %s (%d bytes)\n", out, len(data))
	return nil
}

func (cli *commandLine) closeCycle(ctx context.Context, yes bool) error {
	if _, err := cli.requireSession(); err != nil {
		return err
	}
	if !yes {
		fmt.Fprint(cli.out, "¿Cerrar el ciclo activo? Esta acción no se puede deshacer (s/N): ")
		answer, _ := cli.in.ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "s" && a != "si" && a != "sí" {
			fmt.Fprintln(cli.out, "Cancelado.")
			return nil
		}
	}
	res, err := cli.svc.CloseCycle(ctx)
	if err != nil {
		return err
	}
	views.CycleClosure(cli.out, res)
	return nil
}

// terminalNavigator reports forced navigations, which only happen when the
// backend ends the session
type terminalNavigator struct {
	w io.Writer
}

func (n *terminalNavigator) Navigate(path string) {
	if path == authz.LoginPath {
		fmt.Fprintln(n.w, "Tu sesión expiró. Inicia sesión de nuevo con: campus login")
		return
	}
	fmt.Fprintf(n.w, "-> %s\n", path)
}

type terminalNotifier struct {
	w io.Writer
}

func (n *terminalNotifier) Alert(message string) {
	fmt.Fprintf(n.w, "! %s\n", message)
}

var (
	_ client.Navigator = (*terminalNavigator)(nil)
	_ client.Notifier  = (*terminalNotifier)(nil)
	_ campusService    = (*academic.Service)(nil)
)
