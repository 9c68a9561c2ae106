package handlers

const openAPIYAML = `openapi: 3.0.3
info:
  title: TaskHub API
  description: Task management with ownership-scoped access and a flat user/admin role model.
  version: "1.0"
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
  schemas:
    User:
      type: object
      properties:
        id: { type: string, format: uuid }
        username: { type: string }
        email: { type: string, format: email }
        role: { type: string, enum: [user, admin] }
        createdAt: { type: string, format: date-time }
        updatedAt: { type: string, format: date-time }
    Task:
      type: object
      properties:
        id: { type: string, format: uuid }
        title: { type: string, maxLength: 200 }
        description: { type: string, maxLength: 5000 }
        status: { type: string, enum: [pending, in_progress, done] }
        priority: { type: integer, minimum: 1, maximum: 5 }
        dueDate: { type: string, format: date-time, nullable: true }
        ownerId: { type: string, format: uuid }
        createdAt: { type: string, format: date-time }
        updatedAt: { type: string, format: date-time }
    TaskPayload:
      type: object
      required: [title]
      properties:
        title: { type: string, minLength: 1, maxLength: 200 }
        description: { type: string, maxLength: 5000 }
        status: { type: string, enum: [pending, in_progress, done], default: pending }
        priority: { type: integer, minimum: 1, maximum: 5, default: 3 }
        dueDate: { type: string, format: date-time, nullable: true }
    PaginatedTasks:
      type: object
      properties:
        items:
          type: array
          items: { $ref: '#/components/schemas/Task' }
        total: { type: integer }
        skip: { type: integer }
        limit: { type: integer }
    Error:
      type: object
      properties:
        error:
          type: object
          properties:
            code: { type: string }
            message: { type: string }
            requestId: { type: string }
paths:
  /auth/register:
    post:
      summary: Register a new user
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [username, email, password]
              properties:
                username: { type: string, minLength: 3, maxLength: 50 }
                email: { type: string, format: email }
                password: { type: string, minLength: 6, maxLength: 128 }
      responses:
        "201":
          description: Created
          content:
            application/json:
              schema: { $ref: '#/components/schemas/User' }
        "409": { description: Username or email already exists }
        "422": { description: Validation failed }
  /auth/login:
    post:
      summary: Exchange credentials for an access token
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [username, password]
              properties:
                username: { type: string }
                password: { type: string }
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: object
                properties:
                  access_token: { type: string }
                  token_type: { type: string, example: bearer }
        "401": { description: Invalid credentials }
        "429": { description: Rate limited }
  /auth/me:
    get:
      summary: Authenticated caller's record
      security: [{ bearerAuth: [] }]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: { $ref: '#/components/schemas/User' }
        "401": { description: Unauthorized }
  /tasks:
    post:
      summary: Create a task owned by the caller
      security: [{ bearerAuth: [] }]
      requestBody:
        required: true
        content:
          application/json:
            schema: { $ref: '#/components/schemas/TaskPayload' }
      responses:
        "201":
          description: Created
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Task' }
        "401": { description: Unauthorized }
        "422": { description: Validation failed }
    get:
      summary: List tasks (paginated)
      description: Non-admins always see only their own tasks; admins may pass mine=false for all.
      security: [{ bearerAuth: [] }]
      parameters:
        - { name: skip, in: query, schema: { type: integer, minimum: 0, default: 0 } }
        - { name: limit, in: query, schema: { type: integer, minimum: 1, maximum: 100, default: 10 } }
        - { name: status, in: query, schema: { type: string, enum: [pending, in_progress, done] } }
        - { name: mine, in: query, schema: { type: boolean, default: true } }
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: { $ref: '#/components/schemas/PaginatedTasks' }
        "401": { description: Unauthorized }
  /tasks/{id}:
    parameters:
      - { name: id, in: path, required: true, schema: { type: string, format: uuid } }
    get:
      summary: Fetch one task
      security: [{ bearerAuth: [] }]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Task' }
        "403": { description: Not the owner and not an admin }
        "404": { description: No such task }
    put:
      summary: Replace a task's mutable fields
      security: [{ bearerAuth: [] }]
      requestBody:
        required: true
        content:
          application/json:
            schema: { $ref: '#/components/schemas/TaskPayload' }
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema: { $ref: '#/components/schemas/Task' }
        "403": { description: Not the owner and not an admin }
        "404": { description: No such task }
        "422": { description: Validation failed }
    delete:
      summary: Delete a task permanently
      security: [{ bearerAuth: [] }]
      responses:
        "204": { description: Deleted }
        "403": { description: Not the owner and not an admin }
        "404": { description: No such task }
  /users:
    get:
      summary: List all users (admin only)
      security: [{ bearerAuth: [] }]
      responses:
        "200":
          description: OK
          content:
            application/json:
              schema:
                type: array
                items: { $ref: '#/components/schemas/User' }
        "403": { description: Admin role required }
  /users/{id}:
    delete:
      summary: Delete a user and cascade their tasks (admin only)
      security: [{ bearerAuth: [] }]
      parameters:
        - { name: id, in: path, required: true, schema: { type: string, format: uuid } }
      responses:
        "204": { description: Deleted }
        "403": { description: Admin role required }
        "404": { description: No such user }
`
