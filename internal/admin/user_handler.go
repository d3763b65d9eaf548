package admin

import (
	"strings"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateBranchUserRequest struct {
	Name     string          `json:"name"`
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"` // accountant | supervisor | cashier
}

// POST /api/admin/branches/:id/users
func CreateBranchUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID := c.Params("id")

		var branch models.Branch
		if err := database.DB.First(&branch, "id = ?", branchID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "الفرع غير موجود")
		}

		var body CreateBranchUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		body.Username = strings.ToLower(strings.TrimSpace(body.Username))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "الاسم واسم المستخدم وكلمة المرور مطلوبة")
		}

		switch body.Role {
		case models.RoleAccountant, models.RoleSupervisor, models.RoleCashier:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "الدور غير صالح (accountant|supervisor|cashier)")
		}

		var exist models.User
		if err := database.DB.Where("username = ?", body.Username).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "اسم المستخدم مسجل بالفعل")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تشفير كلمة المرور")
		}

		user := models.User{
			Name:         body.Name,
			Username:     body.Username,
			PasswordHash: string(hash),
			Role:         body.Role,
			BranchID:     &branch.ID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر إنشاء المستخدم")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":        user.ID,
			"name":      user.Name,
			"username":  user.Username,
			"role":      user.Role,
			"branch_id": user.BranchID,
		})
	}
}

// GET /api/admin/branches/:id/users
func ListBranchUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID := c.Params("id")

		var users []models.User
		if err := database.DB.
			Where("branch_id = ?", branchID).
			Order("created_at DESC").
			Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب المستخدمين")
		}

		res := make([]fiber.Map, 0, len(users))
		for _, u := range users {
			res = append(res, fiber.Map{
				"id":         u.ID,
				"name":       u.Name,
				"username":   u.Username,
				"role":       u.Role,
				"branch_id":  u.BranchID,
				"created_at": u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}
		return c.JSON(res)
	}
}
