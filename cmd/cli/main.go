// Cliente interactivo de terminal contra el API de PeopleWork. Útil para
// probar el flujo completo de registro, verificación y reservas sin frontend.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"peoplework/internal/client"
	"peoplework/internal/domain"
)

func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	baseURL := os.Getenv("PEOPLEWORK_API_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatal(err)
	}
	storage := client.NewFileTokenStorage(filepath.Join(home, ".peoplework", "session.json"))

	api := client.NewClient(baseURL)
	session := client.NewSession(api, storage)
	if err := session.Restore(ctx); err != nil {
		fmt.Printf("No se pudo restaurar la sesion: %v\n", err)
	}

	for {
		fmt.Println("\n===== PeopleWork CLI =====")
		if user, err := session.CurrentUser(); err == nil {
			fmt.Printf("Sesion activa: %s (%s)\n", user.Name, user.Role)
		} else {
			fmt.Println("Sin sesion activa.")
		}
		fmt.Println("[1] Iniciar sesion")
		fmt.Println("[2] Registrarse y verificar email")
		fmt.Println("[3] Ver mi perfil")
		fmt.Println("[4] Buscar vendedores")
		fmt.Println("[5] Reservar cita")
		fmt.Println("[6] Dejar resena")
		fmt.Println("[7] Cerrar sesion")
		fmt.Println("[8] Salir")
		fmt.Print("Selecciona una opcion: ")

		switch readLine(reader) {
		case "1":
			loginFlow(ctx, reader, session)
		case "2":
			registerFlow(ctx, reader, api, session)
		case "3":
			profileFlow(session)
		case "4":
			searchSellersFlow(ctx, reader, api)
		case "5":
			bookAppointmentFlow(ctx, reader, api, session)
		case "6":
			reviewFlow(ctx, reader, api, session)
		case "7":
			if err := session.Logout(); err != nil {
				fmt.Printf("Error cerrando sesion: %v\n", err)
			} else {
				fmt.Println("Sesion cerrada.")
			}
		case "8":
			os.Exit(0)
		default:
			fmt.Println("Opcion invalida.")
		}
	}
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	return readLine(reader)
}

func printAPIError(err error) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		fmt.Printf("Error del servidor: %s\n", apiErr.Message)
		return
	}
	fmt.Printf("Error: %v\n", err)
}

func loginFlow(ctx context.Context, reader *bufio.Reader, session *client.Session) {
	email := prompt(reader, "Email: ")
	password := prompt(reader, "Password: ")

	user, err := session.Login(ctx, email, password)
	if err != nil {
		printAPIError(err)
		return
	}
	fmt.Printf("Bienvenido, %s.\n", user.Name)
}

func registerFlow(ctx context.Context, reader *bufio.Reader, api *client.Client, session *client.Session) {
	req := client.RegisterRequest{
		Name:     prompt(reader, "Nombre: "),
		Phone:    prompt(reader, "Telefono: "),
		Email:    prompt(reader, "Email: "),
		Address:  prompt(reader, "Direccion (opcional): "),
		Password: prompt(reader, "Password: "),
		Role:     prompt(reader, "Rol [customer/seller]: "),
	}

	if _, err := api.Register(ctx, req); err != nil {
		printAPIError(err)
		return
	}
	fmt.Println("Cuenta creada. Revisa tu correo: enviamos un codigo de verificacion.")

	otp := prompt(reader, "Codigo OTP: ")
	user, err := session.CompleteVerification(ctx, req.Email, otp)
	if err != nil {
		printAPIError(err)
		return
	}
	fmt.Printf("Email verificado. Sesion iniciada como %s.\n", user.Name)
}

func profileFlow(session *client.Session) {
	user, err := session.CurrentUser()
	if err != nil {
		fmt.Println("Inicia sesion primero.")
		return
	}

	fmt.Printf("\nNombre:    %s\n", user.Name)
	fmt.Printf("Email:     %s\n", user.Email)
	fmt.Printf("Telefono:  %s\n", user.Phone)
	fmt.Printf("Rol:       %s\n", user.Role)
	if user.Speciality != "" {
		fmt.Printf("Oficio:    %s\n", user.Speciality)
	}
}

func searchSellersFlow(ctx context.Context, reader *bufio.Reader, api *client.Client) {
	keyword := prompt(reader, "Palabra clave (opcional): ")

	sellers, err := api.ListSellers(ctx, keyword, 1, 20)
	if err != nil {
		printAPIError(err)
		return
	}
	if len(sellers.Users) == 0 {
		fmt.Println("Sin resultados.")
		return
	}
	for i, seller := range sellers.Users {
		fmt.Printf("[%d] %s", i+1, seller.Name)
		if seller.Speciality != "" {
			fmt.Printf(" (%s)", seller.Speciality)
		}
		fmt.Printf(" - ID: %s\n", seller.ID)
	}
	fmt.Printf("Total: %d vendedores.\n", sellers.TotalUsers)
}

func bookAppointmentFlow(ctx context.Context, reader *bufio.Reader, api *client.Client, session *client.Session) {
	if !session.HasPermission(domain.RoleCustomer, domain.RoleAdmin) {
		fmt.Println("Necesitas una sesion de cliente para reservar.")
		return
	}

	sellerID := prompt(reader, "ID del vendedor: ")
	serviceType := prompt(reader, "Tipo de servicio: ")
	dateRaw := prompt(reader, "Fecha (YYYY-MM-DD HH:MM): ")
	notes := prompt(reader, "Notas (opcional): ")

	date, err := time.Parse("2006-01-02 15:04", dateRaw)
	if err != nil {
		fmt.Println("Fecha invalida.")
		return
	}

	appt, err := api.CreateAppointment(ctx, client.AppointmentRequest{
		SellerID:        sellerID,
		ServiceType:     serviceType,
		AppointmentDate: date.UTC(),
		Notes:           notes,
	})
	if err != nil {
		printAPIError(err)
		return
	}
	fmt.Printf("Cita creada en estado %s (ID: %s).\n", appt.Status, appt.ID)
}

func reviewFlow(ctx context.Context, reader *bufio.Reader, api *client.Client, session *client.Session) {
	if !session.HasPermission(domain.RoleCustomer) {
		fmt.Println("Solo los clientes pueden dejar resenas.")
		return
	}

	appointmentID := prompt(reader, "ID de la cita completada: ")
	sellerID := prompt(reader, "ID del vendedor: ")
	ratingRaw := prompt(reader, "Puntuacion [1-5]: ")
	comment := prompt(reader, "Comentario (opcional): ")

	rating, err := strconv.Atoi(ratingRaw)
	if err != nil {
		fmt.Println("Puntuacion invalida.")
		return
	}

	review, err := api.CreateReview(ctx, client.ReviewRequest{
		AppointmentID: appointmentID,
		SellerID:      sellerID,
		Rating:        rating,
		Comment:       comment,
	})
	if err != nil {
		printAPIError(err)
		return
	}
	fmt.Printf("Resena publicada (ID: %s).\n", review.ID)
}
