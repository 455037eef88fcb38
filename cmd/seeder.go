package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	departmentDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/department"
	employeeDatamodel "github.com/workstack/org-messaging/internal/core/datamodel/employee"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with a sample organization",
	Long:  `Seed the database with departments, roles and an employee tree for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm connection: %v", err)
		}

		departments := map[string]*departmentDatamodel.Department{}
		for _, name := range []string{"Engineering", "Sales", "HR"} {
			dept := &departmentDatamodel.Department{Name: name}
			if err := db.Where("name = ?", name).FirstOrCreate(dept).Error; err != nil {
				log.Fatalf("failed to seed department %s: %v", name, err)
			}
			departments[name] = dept
		}

		roles := map[string]*employeeDatamodel.Role{}
		for _, name := range []string{
			"Administrator",
			"Engineering Manager",
			"Software Engineer",
			"Sales Manager",
			"Sales Representative",
			"HR Generalist",
			"Operations Director",
		} {
			role := &employeeDatamodel.Role{Name: name}
			if err := db.Where("name = ?", name).FirstOrCreate(role).Error; err != nil {
				log.Fatalf("failed to seed role %s: %v", name, err)
			}
			roles[name] = role
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)

		seedEmployee := func(name, email, deptName, roleName string, hiredYearsAgo int, managerID *int64) *employeeDatamodel.Employee {
			account := &employeeDatamodel.Account{Email: email, PasswordHash: string(hash), IsActive: true}
			if err := db.Where("email = ?", email).FirstOrCreate(account).Error; err != nil {
				log.Fatalf("failed to seed account %s: %v", email, err)
			}

			emp := &employeeDatamodel.Employee{
				AccountID: account.ID,
				Name:      name,
				Email:     email,
				HireDate:  time.Now().AddDate(-hiredYearsAgo, 0, 0),
				ManagerID: managerID,
			}
			if dept, ok := departments[deptName]; ok {
				emp.DepartmentID = &dept.ID
			}
			if role, ok := roles[roleName]; ok {
				emp.RoleID = &role.ID
			}
			if err := db.Where("email = ?", email).FirstOrCreate(emp).Error; err != nil {
				log.Fatalf("failed to seed employee %s: %v", email, err)
			}
			fmt.Println("Seeded employee:", email)
			return emp
		}

		director := seedEmployee("Dana Whitfield", "dana@example.com", "", "Operations Director", 9, nil)
		seedEmployee("Alex Morgan", "alex@example.com", "", "Administrator", 8, &director.ID)

		engManager := seedEmployee("Priya Shah", "priya@example.com", "Engineering", "Engineering Manager", 6, &director.ID)
		seedEmployee("Tom Becker", "tom@example.com", "Engineering", "Software Engineer", 3, &engManager.ID)
		seedEmployee("Lena Fischer", "lena@example.com", "Engineering", "Software Engineer", 2, &engManager.ID)

		salesManager := seedEmployee("Marco Ruiz", "marco@example.com", "Sales", "Sales Manager", 5, &director.ID)
		seedEmployee("Ivy Chen", "ivy@example.com", "Sales", "Sales Representative", 1, &salesManager.ID)

		seedEmployee("Grace Osei", "grace@example.com", "HR", "HR Generalist", 7, &director.ID)
		seedEmployee("Noah Petrov", "noah@example.com", "HR", "HR Generalist", 2, &director.ID)

		fmt.Println("Seeding complete")
	},
}
